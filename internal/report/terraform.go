package report

import (
	"io"
	"strings"

	"github.com/nao1215/sentinel/internal/model"
)

// TerraformWriter exports the infrastructure code blocks of a report as a
// single Terraform file.
type TerraformWriter struct {
	baseWriter
}

// NewTerraformWriter creates a TerraformWriter that outputs to the given writer.
func NewTerraformWriter(output io.Writer) *TerraformWriter {
	return &TerraformWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's hcl and terraform blocks in order of
// appearance, or fails with ErrNoInfrastructureCode.
func (w *TerraformWriter) Write(doc *model.Document) (int, error) {
	if len(doc.Infrastructure) == 0 {
		return 0, ErrNoInfrastructureCode
	}

	var sb strings.Builder
	sb.WriteString("# Remediation code exported by Sentinel\n")
	sb.WriteString("# Standards: " + standardsText(doc.Standards) + "\n")
	if !doc.GeneratedAt.IsZero() {
		sb.WriteString("# Report version: " + doc.GeneratedAt.Format(timeLayout) + "\n")
	}
	sb.WriteString("# Review before applying.\n")

	for _, block := range doc.Infrastructure {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(block, "\n"))
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

// WriteHistory is not supported by the Terraform format.
func (w *TerraformWriter) WriteHistory(_ []model.VersionEntry) (int, error) {
	return 0, ErrHistoryNotSupported
}
