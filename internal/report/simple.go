package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nao1215/sentinel/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display
// with color-coded severity levels.
type SimpleWriter struct {
	baseWriter

	// colorMode forces color on or off. nil follows the terminal.
	colorMode *bool

	// verbose adds descriptions and remediations to each finding.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithColor forces colored output on or off.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colorMode = &enabled
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the document in human-readable format.
func (w *SimpleWriter) Write(doc *model.Document) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, doc)
	w.writeMetrics(&sb, doc.Metrics)
	w.writeSummary(&sb, doc.View)
	w.writeFindings(&sb, doc.View.Findings)
	w.writeCitations(&sb, doc.View.Citations)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs the version history, newest first.
func (w *SimpleWriter) WriteHistory(entries []model.VersionEntry) (int, error) {
	var sb strings.Builder

	w.writeSection(&sb, "VERSION HISTORY")
	if len(entries) == 0 {
		sb.WriteString("  No versions\n")
		return io.WriteString(w.output, sb.String())
	}

	label := w.paint(color.New(color.FgHiBlue, color.Bold))
	for i, e := range entries {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %s  %s  %s\n", marker, label(e.Timestamp.Format(timeLayout)), e.ID, e.Reason)
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, doc *model.Document) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                   SENTINEL COMPLIANCE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Standards:  %s\n", standardsText(doc.Standards))
	fmt.Fprintf(sb, "Persona:    %s\n", orDash(string(doc.Persona)))
	if !doc.GeneratedAt.IsZero() {
		fmt.Fprintf(sb, "Generated:  %s\n", doc.GeneratedAt.Format(timeLayout))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeMetrics(sb *strings.Builder, m model.Metrics) {
	w.writeSection(sb, "POSTURE")

	fmt.Fprintf(sb, "  Risk Level:  %s\n", w.severityLabel(m.RiskLevel, m.RiskLevel.String()))
	fmt.Fprintf(sb, "  Integrity:   %d/100 (%s)\n", m.Integrity, m.Badge)
	fmt.Fprintf(sb, "  Gaps:        %d\n", m.GapCount)
	fmt.Fprintf(sb, "  Critical:    %d\n", m.CriticalCount)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, view model.ParsedView) {
	if !view.HasSummary() {
		return
	}
	w.writeSection(sb, "EXECUTIVE SUMMARY")
	for line := range strings.Lines(view.Summary) {
		sb.WriteString("  ")
		sb.WriteString(strings.TrimRight(line, "\n"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, findings []model.Finding) {
	w.writeSection(sb, "FINDINGS")

	if len(findings) == 0 {
		sb.WriteString("  No structured findings\n\n")
		return
	}

	for _, group := range groupBySeverity(findings) {
		for _, f := range group.findings {
			label := w.severityLabel(f.Severity, "["+f.SeverityLabel()+"]")
			fmt.Fprintf(sb, "  %s %s %s\n", label, orDash(f.ControlID), f.Title)
			if w.verbose {
				if f.Description != "" {
					fmt.Fprintf(sb, "      Gap: %s\n", f.Description)
				}
				if f.Remediation != "" {
					fmt.Fprintf(sb, "      Fix: %s\n", f.Remediation)
				}
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCitations(sb *strings.Builder, citations []model.Citation) {
	if len(citations) == 0 {
		return
	}
	w.writeSection(sb, "REFERENCES")
	for _, c := range citations {
		fmt.Fprintf(sb, "  [+] %s\n      %s\n", c.DisplayText, c.Target)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by Sentinel\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// severityLabel colors text by severity.
func (w *SimpleWriter) severityLabel(s model.Severity, text string) string {
	return w.paint(severityColor(s))(text)
}

// paint returns a sprint function for c honoring the color mode.
func (w *SimpleWriter) paint(c *color.Color) func(a ...interface{}) string {
	if w.colorMode != nil {
		if *w.colorMode {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return c.SprintFunc()
}

// severityColor returns the color for a severity level.
func severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityCritical:
		return color.New(color.FgHiRed, color.Bold)
	case model.SeverityHigh:
		return color.New(color.FgRed)
	case model.SeverityMedium:
		return color.New(color.FgYellow)
	case model.SeverityLow:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}
