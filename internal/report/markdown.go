package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sentinel/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the document in Markdown format.
func (w *MarkdownWriter) Write(doc *model.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, doc)
	w.writeExecutiveSummary(md, doc.View)
	w.writeSeveritySummary(md, doc)
	w.writeFindings(md, doc.View.Findings)
	w.writeDiagram(md, doc.View)
	w.writeCitations(md, doc.View.Citations)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteHistory outputs the version history as a Markdown table.
func (w *MarkdownWriter) WriteHistory(entries []model.VersionEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Version History")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No versions recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(len(entries) - i),
			e.Timestamp.Format(timeLayout),
			e.Reason,
			"`" + e.ID + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Timestamp", "Reason", "ID"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, doc *model.Document) {
	md.H1("Compliance Assessment Report")
	md.PlainText("")

	generated := "-"
	if !doc.GeneratedAt.IsZero() {
		generated = doc.GeneratedAt.Format("2006-01-02 15:04:05 MST")
	}

	m := doc.Metrics
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Standards", standardsText(doc.Standards)},
			{"Persona", orDash(string(doc.Persona))},
			{"Generated", generated},
			{"Risk Level", riskText(m.RiskLevel)},
			{"Integrity", strconv.Itoa(m.Integrity) + "/100 (" + m.Badge + ")"},
			{"Compliance Gaps", strconv.Itoa(m.GapCount)},
		},
	})
	md.PlainText("")
}

func riskText(s model.Severity) string {
	info := model.GetSeverityInfo(s)
	return info.Icon + " " + info.Label
}

func (w *MarkdownWriter) writeExecutiveSummary(md *markdown.Markdown, view model.ParsedView) {
	if !view.HasSummary() {
		return
	}
	md.H2("Executive Summary")
	md.PlainText("")
	md.PlainText(view.Summary)
	md.PlainText("")
}

func (w *MarkdownWriter) writeSeveritySummary(md *markdown.Markdown, doc *model.Document) {
	md.H2("Severity Summary")
	md.PlainText("")

	counts := model.CountBySeverity(doc.View.Findings)
	rows := make([][]string, 0, 6)
	for _, s := range model.Severities() {
		info := model.GetSeverityInfo(s)
		rows = append(rows, []string{info.Icon + " " + info.Label, strconv.Itoa(counts[s])})
	}
	if n := counts[model.SeverityUnknown]; n > 0 {
		info := model.GetSeverityInfo(model.SeverityUnknown)
		rows = append(rows, []string{info.Icon + " " + info.Label, strconv.Itoa(n)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(doc.View.Findings)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(doc.View.Findings) > 0 {
		w.writePieChart(md, counts)
	}
	w.writeAlert(md, doc.Metrics, counts)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	for _, s := range append(model.Severities(), model.SeverityUnknown) {
		if n := counts[s]; n > 0 {
			chart.LabelAndIntValue(model.GetSeverityInfo(s).Label, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the report's posture.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, m model.Metrics, counts map[model.Severity]int) {
	switch {
	case counts[model.SeverityCritical] > 0:
		md.Cautionf(
			"Critical compliance gaps detected! %d critical finding(s) require immediate remediation.",
			counts[model.SeverityCritical],
		)
	case counts[model.SeverityHigh] > 0:
		md.Warningf(
			"High severity gaps detected. %d finding(s) are likely to fail an audit.",
			counts[model.SeverityHigh],
		)
	case counts[model.SeverityMedium] > 0:
		md.Importantf(
			"Medium severity gaps found. %d finding(s) should be planned for the next cycle.",
			counts[model.SeverityMedium],
		)
	case m.GapCount > 0:
		md.Note("Only low severity gaps detected.")
	default:
		md.Tip("No compliance gaps detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, findings []model.Finding) {
	md.H2("Findings")
	md.PlainText("")

	if len(findings) == 0 {
		md.PlainText("No structured findings in this report.")
		md.PlainText("")
		return
	}

	for _, group := range groupBySeverity(findings) {
		info := model.GetSeverityInfo(group.level)
		md.H3(info.Icon + " " + info.Label)
		md.PlainText("")
		w.writeFindingsTable(md, group.findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			orDash(f.ControlID),
			f.Title,
			truncateString(orDash(f.Remediation), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Control", "Title", "Remediation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Title, f.Description)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDiagram(md *markdown.Markdown, view model.ParsedView) {
	if !view.HasDiagram() {
		return
	}
	md.H2("Attack Path")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, view.Diagram)
	md.PlainText("")
}

func (w *MarkdownWriter) writeCitations(md *markdown.Markdown, citations []model.Citation) {
	if len(citations) == 0 {
		return
	}
	md.H2("References")
	md.PlainText("")

	items := make([]string, len(citations))
	for i, c := range citations {
		items[i] = "[" + c.DisplayText + "](" + c.Target + ")"
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by Sentinel*")
}
