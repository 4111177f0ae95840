package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/config"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/secrets"
)

// errEmptyMaterial is returned when there is nothing to assess.
var errEmptyMaterial = errors.New("no material to assess: pass a file or pipe text on stdin")

func newAssessCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess [file]",
		Short: "Generate a compliance report for a system description",
		Long: `Assess audits a system description against one or more compliance standards.

The material is read from the given file, or from stdin when the file is
omitted or "-". It can be an architecture description, a policy, or
infrastructure code. Supporting files are sent along with --attach.

A new assessment starts a new session: the previous report and its
conversation stay in the archive but are no longer current.

Examples:
  # Audit an architecture description against SOC2 and ISO 27001
  sentinel assess --standard soc2 --standard iso-27001 architecture.md

  # Audit Terraform for a developer audience
  cat main.tf | sentinel assess -s cis-benchmarks --persona developer

  # Stop when the backend reports missing context
  sentinel assess --strict -s hipaa system.md

  # Use the healthcare profile from .sentinel and write Markdown
  sentinel assess -p healthcare -f markdown -o report.md system.md

Credentials found in the material (private keys, cloud access keys, API
tokens) are reported as warnings. Pass --redact-secrets to mask them
before anything is sent to the backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssessCmd(cmd, args, d)
		},
	}

	cmd.Flags().StringSliceP("standard", "s", nil,
		"Compliance standard key, repeatable (soc2, pci-dss, hipaa, gdpr, ...)")
	cmd.Flags().String("persona", "",
		"Report audience: ciso, devsecops, auditor or developer")
	cmd.Flags().StringP("region", "r", "",
		"Region restricting the standards: all, us, eu, global, apac or latam")
	cmd.Flags().StringSliceP("attach", "a", nil,
		"Attach a supporting file, repeatable")
	cmd.Flags().Bool("precheck", true,
		"Check whether the material is detailed enough before generating")
	cmd.Flags().Bool("strict", false,
		"Abort when the pre-check reports missing context")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout for the assessment")
	cmd.Flags().Bool("redact-secrets", false,
		"Mask detected credentials before sending the material")
	addOutputFlags(cmd)

	return cmd
}

// runAssessCmd executes the assess command.
func runAssessCmd(cmd *cobra.Command, args []string, d deps) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyAssessFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.RequireStandards(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	material, err := readMaterial(cmd, args)
	if err != nil {
		return err
	}

	paths, err := cmd.Flags().GetStringSlice("attach")
	if err != nil {
		return err
	}
	attachments := make([]model.Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := model.LoadAttachment(p)
		if err != nil {
			return err
		}
		attachments = append(attachments, a)
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

	req := model.AssessmentRequest{
		Material:    material,
		Standards:   cfg.Standards,
		Persona:     cfg.Persona,
		Attachments: attachments,
	}
	if req, err = screenSecrets(cmd, req); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Assessing against %s for %s...\n",
		model.JoinStandards(req.Standards), req.Persona.Short())

	genCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if _, err := ws.session.RunInitialAssessment(genCtx, req); err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	doc, err := ws.session.Document()
	if err != nil {
		return err
	}
	return writeDocument(cmd, cfg, doc)
}

// applyAssessFlags copies the assess flags that were set onto cfg.
func applyAssessFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("standard") {
		keys, err := flags.GetStringSlice("standard")
		if err != nil {
			return err
		}
		standards, err := model.ParseStandards(keys)
		if err != nil {
			return err
		}
		cfg.Standards = standards
	}
	if flags.Changed("persona") {
		key, err := flags.GetString("persona")
		if err != nil {
			return err
		}
		persona, err := model.ParsePersona(key)
		if err != nil {
			return err
		}
		cfg.Persona = persona
	}
	if flags.Changed("region") {
		key, err := flags.GetString("region")
		if err != nil {
			return err
		}
		region, err := model.ParseRegion(key)
		if err != nil {
			return err
		}
		cfg.Region = region
	}

	var err error
	if flags.Changed("precheck") {
		if cfg.Precheck, err = flags.GetBool("precheck"); err != nil {
			return err
		}
	}
	if flags.Changed("strict") {
		if cfg.RequireComplete, err = flags.GetBool("strict"); err != nil {
			return err
		}
		if cfg.RequireComplete {
			cfg.Precheck = true
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	return applyOutputFlags(cmd, cfg)
}

// readMaterial reads the material from the file argument or stdin.
func readMaterial(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read material: %w", err)
	}

	material := strings.TrimSpace(string(data))
	if material == "" {
		return "", errEmptyMaterial
	}
	return material, nil
}

// screenSecrets warns about credentials in req and masks them when
// --redact-secrets is set.
func screenSecrets(cmd *cobra.Command, req model.AssessmentRequest) (model.AssessmentRequest, error) {
	redact, err := cmd.Flags().GetBool("redact-secrets")
	if err != nil {
		return req, err
	}

	scanner := secrets.NewScanner()
	leaks := scanner.ScanRequest(req)
	if len(leaks) == 0 {
		return req, nil
	}

	w := cmd.ErrOrStderr()
	for _, l := range leaks {
		fmt.Fprintf(w, "warning: %s: %s found (%s, %dx): %s\n",
			l.Source, l.Title, l.Severity.String(), l.Count, l.Preview)
	}
	if !redact {
		fmt.Fprintln(w, "warning: material is sent unmodified; use --redact-secrets to mask credentials")
		return req, nil
	}
	fmt.Fprintf(w, "Masked %d credential kind(s) before sending.\n", len(leaks))
	return scanner.RedactRequest(req), nil
}
