package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/archive"
	"github.com/nao1215/sentinel/internal/backend"
	"github.com/nao1215/sentinel/internal/config"
	"github.com/nao1215/sentinel/internal/log"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/report"
	"github.com/nao1215/sentinel/internal/session"
)

// errNoAssessment is returned by commands that need a report when the
// archive holds none.
var errNoAssessment = errors.New("no assessment yet: run 'sentinel assess' first")

// generatorFactory creates the generation backend for a run.
type generatorFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Generator, error)

// deps holds the collaborators that commands are built with.
type deps struct {
	newGenerator generatorFactory
}

func defaultDeps() deps {
	return deps{newGenerator: newGeminiGenerator}
}

// newGeminiGenerator creates the Gemini backend from the configuration.
func newGeminiGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Generator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return backend.NewGemini(ctx, cfg.APIKey,
		backend.WithAssessmentModel(cfg.AssessmentModel),
		backend.WithChatModel(cfg.ChatModel),
		backend.WithLogger(logger),
	)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the global flags and the configuration
// file. Command specific flags are applied by each command.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.Profile, err = flags.GetString("profile")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}

	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger that masks credentials.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// workspace is the session of one command run, backed by the archive.
type workspace struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *archive.DB
	recorder *archive.Recorder
	session  *session.Session

	// record is the archived session that was loaded, nil for an empty
	// archive.
	record *archive.SessionRecord
}

// openWorkspace opens the archive and loads its latest session. gen may be
// nil for commands that never call the backend.
func openWorkspace(ctx context.Context, cfg *config.Config, logger *slog.Logger, gen backend.Generator) (*workspace, error) {
	db, err := archive.Open(cfg.DBDir, archive.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	ws := &workspace{cfg: cfg, logger: logger, db: db}

	rec, err := db.LatestSession(ctx)
	switch {
	case errors.Is(err, archive.ErrSessionNotFound):
	case err != nil:
		_ = db.Close()
		return nil, fmt.Errorf("failed to read archive: %w", err)
	default:
		ws.record = rec
	}

	recordID := ""
	if ws.record != nil {
		recordID = ws.record.ID
	}
	ws.recorder = archive.NewRecorder(db, recordID)
	ws.session = session.New(gen,
		session.WithLogger(logger),
		session.WithRecorder(ws.recorder),
		session.WithPrecheck(cfg.Precheck, cfg.RequireComplete),
		session.WithSimulationConcurrency(cfg.SimulationConcurrency),
	)

	if ws.record != nil {
		if err := ws.load(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Debug("workspace opened", "archive", db.Path(), "session", recordID, "active", ws.session.Active())
	return ws, nil
}

// load restores the archived session into the in-memory session.
func (w *workspace) load(ctx context.Context) error {
	entries, err := w.db.ListVersions(ctx, w.record.ID)
	if err != nil {
		return fmt.Errorf("failed to load report versions: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	transcript, err := w.db.ListMessages(ctx, w.record.ID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	return w.session.Load(w.record.Request, entries, transcript)
}

// requireReport returns errNoAssessment when there is no report.
func (w *workspace) requireReport() error {
	if !w.session.Active() {
		return errNoAssessment
	}
	return nil
}

// Close closes the backend conversation and the archive.
func (w *workspace) Close() error {
	return errors.Join(w.session.Close(), w.db.Close())
}

// writeOutput calls write with stdout, or with the file at path when path
// is set. Directories are created as needed.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Written to %s\n", path)
	return nil
}

// createOutputFile creates path and its parent directories.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports describe security gaps, so only the owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// writeDocument writes doc in the configured format.
func writeDocument(cmd *cobra.Command, cfg *config.Config, doc *model.Document) error {
	return writeOutput(cmd, cfg.ReportFile, func(out io.Writer) error {
		w, err := report.NewWriter(cfg.OutputFormat, out, getVersion())
		if err != nil {
			return err
		}
		_, err = w.Write(doc)
		return err
	})
}

// addOutputFlags registers --format and --output.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		"Output format: simple, markdown, json, terraform, report or terminal")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file path (creates directories if needed)")
}

// applyOutputFlags copies --format and --output onto cfg.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cmd.Flags().Changed("format") {
		cfg.OutputFormat, err = cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	return err
}
