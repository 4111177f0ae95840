package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/nao1215/sentinel/internal/model"
)

const defaultWordWrap = 100

// TerminalWriter renders the report body as styled Markdown in the
// terminal.
type TerminalWriter struct {
	baseWriter

	style    string
	wordWrap int
}

// TerminalWriterOption configures a TerminalWriter.
type TerminalWriterOption func(*TerminalWriter)

// WithStyle selects a glamour standard style ("dark", "light", "notty",
// ...). The default picks one from the terminal.
func WithStyle(style string) TerminalWriterOption {
	return func(w *TerminalWriter) {
		w.style = style
	}
}

// WithWordWrap sets the wrap width.
func WithWordWrap(width int) TerminalWriterOption {
	return func(w *TerminalWriter) {
		if width > 0 {
			w.wordWrap = width
		}
	}
}

// NewTerminalWriter creates a TerminalWriter that outputs to the given writer.
func NewTerminalWriter(output io.Writer, opts ...TerminalWriterOption) *TerminalWriter {
	w := &TerminalWriter{
		baseWriter: newBaseWriter(output),
		wordWrap:   defaultWordWrap,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the displayable report body.
func (w *TerminalWriter) Write(doc *model.Document) (int, error) {
	return w.render(doc.View.Body)
}

// WriteHistory renders the Markdown history table.
func (w *TerminalWriter) WriteHistory(entries []model.VersionEntry) (int, error) {
	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).WriteHistory(entries); err != nil {
		return 0, err
	}
	return w.render(buf.String())
}

func (w *TerminalWriter) render(text string) (int, error) {
	styleOpt := glamour.WithAutoStyle()
	if w.style != "" {
		styleOpt = glamour.WithStandardStyle(w.style)
	}

	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(w.wordWrap),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := renderer.Render(text)
	if err != nil {
		return 0, fmt.Errorf("failed to render report: %w", err)
	}
	return io.WriteString(w.output, out)
}
