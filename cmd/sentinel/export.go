package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/report"
)

// errBundleWithOutput is returned when --bundle is combined with --output.
var errBundleWithOutput = errors.New("--bundle writes its own files and cannot be combined with --output")

// bundleFile is one file of an export bundle.
type bundleFile struct {
	name   string
	format string
}

// bundleFiles returns the files written for doc. The Terraform file is
// only part of the bundle when the report contains infrastructure code.
func bundleFiles(doc *model.Document) []bundleFile {
	files := []bundleFile{
		{name: "report.md", format: report.FormatReport},
		{name: "summary.md", format: report.FormatMarkdown},
		{name: "report.json", format: report.FormatJSON},
	}
	if len(doc.Infrastructure) > 0 {
		files = append(files, bundleFile{name: "remediation.tf", format: report.FormatTerraform})
	}
	return files
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current report in another format",
		Long: `Export writes the current report version.

Formats:
  simple     colored text summary
  markdown   Markdown with severity chart and findings tables
  json       structured JSON with metrics and findings
  terraform  the report's remediation code as a single file
  report     the report text as generated
  terminal   the report rendered for the terminal

With --bundle DIR the report is written in several formats at once:
report.md (the report text), summary.md (Markdown summary), report.json,
and remediation.tf when the report contains infrastructure code.

Examples:
  sentinel export -f markdown -o out/report.md
  sentinel export -f terraform -o remediation.tf
  sentinel export --bundle out/audit-2026-q3`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	addOutputFlags(cmd)
	cmd.Flags().String("bundle", "",
		"Write report.md, summary.md, report.json and remediation.tf into this directory")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	bundleDir, err := cmd.Flags().GetString("bundle")
	if err != nil {
		return err
	}
	if bundleDir != "" && cfg.ReportFile != "" {
		return errBundleWithOutput
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ws, err := openWorkspace(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			logger.Error("failed to close workspace", "error", err)
		}
	}()
	if err := ws.requireReport(); err != nil {
		return err
	}

	doc, err := ws.session.Document()
	if err != nil {
		return err
	}
	if bundleDir != "" {
		return writeBundle(cmd, bundleDir, doc)
	}
	return writeDocument(cmd, cfg, doc)
}

// writeBundle writes doc into dir in every bundle format.
func writeBundle(cmd *cobra.Command, dir string, doc *model.Document) (err error) {
	files := bundleFiles(doc)
	writers := make([]report.Writer, 0, len(files))
	opened := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}
	}()

	for _, bf := range files {
		f, err := createOutputFile(filepath.Join(dir, bf.name))
		if err != nil {
			return err
		}
		opened = append(opened, f)

		w, err := report.NewWriter(bf.format, f, getVersion())
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}

	if _, err := report.NewMultiWriter(writers...).Write(doc); err != nil {
		return err
	}
	for _, bf := range files {
		fmt.Fprintf(cmd.ErrOrStderr(), "Written to %s\n", filepath.Join(dir, bf.name))
	}
	return nil
}
