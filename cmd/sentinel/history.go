package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/archive"
	"github.com/nao1215/sentinel/internal/report"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or restore report versions",
		Long: `History lists the versions of the current report, newest first.

Restoring a version never deletes anything: the restored content is added
as the newest version, so the restore itself can be undone.

Examples:
  # List versions of the current report
  sentinel history

  # Restore an earlier version
  sentinel history --restore 3f1c9a52-6b1e-4f0e-9a57-1d1c2e4b8a10

  # List archived sessions
  sentinel history --sessions`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("restore", "", "Restore the version with this ID")
	cmd.Flags().Bool("sessions", false, "List archived sessions instead of versions")
	addOutputFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
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

	restoreID, err := cmd.Flags().GetString("restore")
	if err != nil {
		return err
	}
	listSessions, err := cmd.Flags().GetBool("sessions")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			logger.Error("failed to close workspace", "error", err)
		}
	}()

	if listSessions {
		summaries, err := ws.db.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		return writeOutput(cmd, cfg.ReportFile, func(out io.Writer) error {
			printSessions(out, summaries, ws.record)
			return nil
		})
	}

	if err := ws.requireReport(); err != nil {
		return err
	}

	if restoreID != "" {
		entry, err := ws.session.Restore(ctx, restoreID)
		if err != nil {
			return fmt.Errorf("failed to restore %s: %w", restoreID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\nNew version: %s\n", entry.Reason, entry.ID)
		return nil
	}

	return writeOutput(cmd, cfg.ReportFile, func(out io.Writer) error {
		w, err := report.NewWriter(cfg.OutputFormat, out, getVersion())
		if err != nil {
			return err
		}
		_, err = w.WriteHistory(ws.session.History())
		return err
	})
}

// printSessions lists archived sessions, newest first, marking the current one.
func printSessions(out io.Writer, summaries []archive.SessionSummary, current *archive.SessionRecord) {
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No archived sessions.")
		return
	}
	for _, s := range summaries {
		marker := " "
		if current != nil && s.ID == current.ID {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s  %2d version(s)  %s\n",
			marker,
			s.ID,
			s.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			s.Versions,
			orNone(s.LastReason),
		)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
