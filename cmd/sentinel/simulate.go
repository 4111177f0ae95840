package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/config"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/pipeline"
)

func newSimulateCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Narrate attacks exploiting the report's findings",
		Long: `Simulate asks the backend how an attacker would exploit each selected
finding of the current report against the assessed system.

Simulations run concurrently; results are printed in finding order.

Examples:
  # Simulate every critical finding
  sentinel simulate --severity critical

  # Simulate the first three findings mentioning IAM
  sentinel simulate --search iam --limit 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulateCmd(cmd, d)
		},
	}

	cmd.Flags().String("severity", "ALL", "Severity filter: ALL, CRITICAL, HIGH, MEDIUM or LOW")
	cmd.Flags().String("search", "", "Only findings whose title, control or description contains this text")
	cmd.Flags().IntP("limit", "n", 0, "Simulate at most this many findings (0 for all)")
	cmd.Flags().Int("concurrency", config.DefaultSimulationConcurrency, "Simulations in flight at once")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Timeout for all simulations")
	cmd.Flags().StringP("output", "o", "", "Write the simulations to the specified file path")

	return cmd
}

// runSimulateCmd executes the simulate command.
func runSimulateCmd(cmd *cobra.Command, d deps) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		if cfg.SimulationConcurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	severityExpr, err := flags.GetString("severity")
	if err != nil {
		return err
	}
	severity, all, err := model.ParseSeverityFilter(severityExpr)
	if err != nil {
		return err
	}
	search, err := flags.GetString("search")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	gen, err := d.newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, cfg, logger, gen)
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

	view, err := ws.session.View()
	if err != nil {
		return err
	}
	findings := model.FilterFindings(view.Findings, severity, all, search)
	if limit > 0 && len(findings) > limit {
		findings = findings[:limit]
	}
	if len(findings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No findings match the filter.")
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Simulating %d finding(s)...\n", len(findings))

	simCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	results, err := ws.session.SimulateFindings(simCtx, findings)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	return writeOutput(cmd, cfg.ReportFile, func(out io.Writer) error {
		printSimulations(out, results)
		return nil
	})
}

// printSimulations writes one section per simulated finding.
func printSimulations(out io.Writer, results []pipeline.SimulationResult) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		info := model.GetSeverityInfo(r.Finding.Severity)
		fmt.Fprintf(out, "%s [%s] %s %s\n", info.Icon, r.Finding.SeverityLabel(), r.Finding.ControlID, r.Finding.Title)
		if r.Err != nil {
			fmt.Fprintf(out, "  simulation failed: %v\n", r.Err)
			continue
		}
		fmt.Fprintln(out, r.Narrative)
	}
}
