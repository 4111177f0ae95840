package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/sentinel/internal/model"
)

// JSONWriter outputs documents in JSON format for tool integration and
// programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the document in JSON format.
func (w *JSONWriter) Write(doc *model.Document) (int, error) {
	return w.writeJSON(doc)
}

// WriteHistory outputs the version history as a JSON array.
func (w *JSONWriter) WriteHistory(entries []model.VersionEntry) (int, error) {
	if entries == nil {
		entries = []model.VersionEntry{}
	}
	return w.writeJSON(entries)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a document with tool metadata.
type JSONReport struct {
	// Version is the Sentinel version that exported this report.
	Version string `json:"version"`

	// ExportedAt is when the export was written.
	ExportedAt time.Time `json:"exported_at"`

	// Report is the exported document.
	Report *model.Document `json:"report"`
}

// FullJSONWriter outputs documents with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	version string
	now     func() time.Time
}

// NewFullJSONWriter creates a writer for documents with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
		now:        time.Now,
	}
}

// Write outputs the document wrapped with metadata.
func (w *FullJSONWriter) Write(doc *model.Document) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:    w.version,
		ExportedAt: w.now().UTC(),
		Report:     doc,
	})
}
