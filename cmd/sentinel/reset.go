package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the current session",
		Long: `Reset discards the current report, its versions and its conversation,
so the next command starts from an empty session. Use --all to clear the
whole archive.`,
		Args: cobra.NoArgs,
		RunE: runResetCmd,
	}

	cmd.Flags().Bool("all", false, "Delete every archived session")

	return cmd
}

// runResetCmd executes the reset command.
func runResetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
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

	ws.session.Reset()

	if all {
		if err := ws.db.Purge(ctx); err != nil {
			return fmt.Errorf("failed to clear archive: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Archive cleared.")
		return nil
	}

	if ws.record == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reset.")
		return nil
	}
	if err := ws.db.DeleteSession(ctx, ws.record.ID); err != nil {
		return fmt.Errorf("failed to discard session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Session %s discarded.\n", ws.record.ID)
	return nil
}
