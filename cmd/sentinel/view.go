package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/parser"
	"github.com/nao1215/sentinel/internal/report"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Render a report in the terminal",
		Long: `View renders the current report, or a saved report file, as styled
Markdown in the terminal.

Examples:
  sentinel view
  sentinel view --style light report.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runViewCmd,
	}

	cmd.Flags().String("style", "", "Render style: dark, light, notty (default: detect)")
	cmd.Flags().Int("width", 100, "Word wrap width")

	return cmd
}

// runViewCmd executes the view command.
func runViewCmd(cmd *cobra.Command, args []string) error {
	style, err := cmd.Flags().GetString("style")
	if err != nil {
		return err
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return err
	}
	w := report.NewTerminalWriter(cmd.OutOrStdout(),
		report.WithStyle(style),
		report.WithWordWrap(width),
	)

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}
		_, err = w.Write(parser.Document(string(data), model.AssessmentRequest{}))
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
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
	_, err = w.Write(doc)
	return err
}
