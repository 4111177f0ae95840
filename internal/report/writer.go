package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sentinel/internal/model"
)

var (
	// ErrUnknownFormat is returned by NewWriter for an unsupported format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrNoInfrastructureCode is returned when exporting infrastructure code
	// from a report that has none.
	ErrNoInfrastructureCode = errors.New("report contains no infrastructure code")

	// ErrHistoryNotSupported is returned by writers that cannot render a
	// version history.
	ErrHistoryNotSupported = errors.New("format does not support version history")
)

// Output formats accepted by NewWriter.
const (
	FormatSimple    = "simple"
	FormatMarkdown  = "markdown"
	FormatJSON      = "json"
	FormatTerraform = "terraform"
	FormatReport    = "report"
	FormatTerminal  = "terminal"
)

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatSimple, FormatMarkdown, FormatJSON, FormatTerraform, FormatReport, FormatTerminal}
}

// Writer defines the interface for report output.
// Implementations write assessment documents in various formats.
type Writer interface {
	// Write outputs the document to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(doc *model.Document) (int, error)

	// WriteHistory outputs a version history, newest first.
	WriteHistory(entries []model.VersionEntry) (int, error)
}

// NewWriter returns the writer for format. version is embedded where the
// format carries tool metadata.
func NewWriter(format string, output io.Writer, version string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatSimple, "":
		return NewSimpleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint()), nil
	case FormatTerraform:
		return NewTerraformWriter(output), nil
	case FormatReport:
		return NewRawWriter(output), nil
	case FormatTerminal:
		return NewTerminalWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the document to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(doc *model.Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the history to all configured Writers.
func (m *MultiWriter) WriteHistory(entries []model.VersionEntry) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(entries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// RawWriter outputs the report text exactly as stored.
type RawWriter struct {
	baseWriter
}

// NewRawWriter creates a RawWriter that outputs to the given writer.
func NewRawWriter(output io.Writer) *RawWriter {
	return &RawWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the raw report text followed by a newline.
func (w *RawWriter) Write(doc *model.Document) (int, error) {
	return io.WriteString(w.output, strings.TrimRight(doc.Raw, "\n")+"\n")
}

// WriteHistory is not supported by the raw format.
func (w *RawWriter) WriteHistory(_ []model.VersionEntry) (int, error) {
	return 0, ErrHistoryNotSupported
}

// groupBySeverity splits findings into the known levels, most severe
// first, followed by findings with an unrecognized severity.
func groupBySeverity(findings []model.Finding) []severityGroup {
	levels := append(model.Severities(), model.SeverityUnknown)
	groups := make([]severityGroup, 0, len(levels))
	for _, level := range levels {
		var matched []model.Finding
		for _, f := range findings {
			if f.Severity == level {
				matched = append(matched, f)
			}
		}
		if len(matched) > 0 {
			groups = append(groups, severityGroup{level: level, findings: matched})
		}
	}
	return groups
}

type severityGroup struct {
	level    model.Severity
	findings []model.Finding
}

// standardsText joins the standard names, or returns "-" when empty.
func standardsText(standards []model.Standard) string {
	if len(standards) == 0 {
		return "-"
	}
	return model.JoinStandards(standards)
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

const timeLayout = "2006-01-02 15:04:05"
