package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/config"
)

// NewRootCmd creates the root command for Sentinel.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Compliance assessment with a generative backend",
		Long: `Sentinel audits system descriptions, policies and infrastructure code
against compliance standards such as SOC2, PCI-DSS or HIPAA.

Each assessment produces a report with findings, citations and remediation
code. Reports are versioned: refine them in conversation with 'sentinel chat',
browse and restore versions with 'sentinel history'.

The Gemini API key is read from GEMINI_API_KEY (or API_KEY).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .sentinel in current or home directory)")
	cmd.PersistentFlags().StringP("profile", "p", "", "Profile from the configuration file")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory of the session archive")

	cmd.AddCommand(newAssessCmd(d))
	cmd.AddCommand(newChatCmd(d))
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newSimulateCmd(d))
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
