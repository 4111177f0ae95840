package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/sentinel/internal/backend"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sentinel"

	// DefaultTimeout bounds one backend call. Assessments run with a large
	// thinking budget and routinely take more than a minute.
	DefaultTimeout = 5 * time.Minute

	// DefaultSimulationConcurrency is the number of attack simulations
	// in flight at once.
	DefaultSimulationConcurrency = 3

	// DefaultPersona is the audience used when none is configured.
	DefaultPersona = model.PersonaCISO

	// DefaultRegion offers every standard.
	DefaultRegion = model.RegionAll

	// DefaultOutputFormat is the export format used when none is given.
	DefaultOutputFormat = report.FormatSimple
)

// API key environment variables, in lookup order.
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
)

// Config holds all configuration options for Sentinel.
// It is populated from defaults, the .sentinel file and CLI flags, in that
// order, and passed down explicitly.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// AssessmentModel generates reports, pre-checks and simulations.
	AssessmentModel string

	// ChatModel answers conversation turns.
	ChatModel string

	// Timeout bounds a single backend call.
	Timeout time.Duration

	// Persona is the audience of new assessments.
	Persona model.Persona

	// Standards are the frameworks new assessments are audited against.
	Standards []model.Standard

	// Region restricts which standards may be selected.
	Region model.Region

	// Precheck runs the input completeness check before generating.
	Precheck bool

	// RequireComplete aborts the assessment when the pre-check reports
	// missing context. It has no effect without Precheck.
	RequireComplete bool

	// SimulationConcurrency caps parallel attack simulations.
	SimulationConcurrency int

	// DBDir is the directory holding the session archive.
	// Defaults to XDG data directory (~/.local/share/sentinel on Linux).
	DBDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sentinel in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profile selects a named profile from the configuration file.
	Profile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// OutputFormat is the export format (see report.Formats).
	OutputFormat string

	// ReportFile is the output file path for exports.
	// When empty, output goes to stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values. The API key is read
// from the environment.
func NewConfig() *Config {
	return &Config{
		APIKey:                APIKeyFromEnv(),
		AssessmentModel:       backend.DefaultAssessmentModel,
		ChatModel:             backend.DefaultChatModel,
		Timeout:               DefaultTimeout,
		Persona:               DefaultPersona,
		Standards:             []model.Standard{},
		Region:                DefaultRegion,
		Precheck:              true,
		SimulationConcurrency: DefaultSimulationConcurrency,
		DBDir:                 XDGDataDir(),
		OutputFormat:          DefaultOutputFormat,
	}
}

// APIKeyFromEnv returns GEMINI_API_KEY, falling back to API_KEY.
func APIKeyFromEnv() string {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(EnvAPIKeyFallback))
}

// ApplyProfile copies the non-empty values of a profile onto the config.
func (c *Config) ApplyProfile(p Profile) error {
	if p.Persona != "" {
		persona, err := model.ParsePersona(p.Persona)
		if err != nil {
			return err
		}
		c.Persona = persona
	}
	if p.Region != "" {
		region, err := model.ParseRegion(p.Region)
		if err != nil {
			return err
		}
		c.Region = region
	}
	if len(p.Standards) > 0 {
		standards, err := model.ParseStandards(p.Standards)
		if err != nil {
			return err
		}
		c.Standards = standards
	}
	if p.AssessmentModel != "" {
		c.AssessmentModel = p.AssessmentModel
	}
	if p.ChatModel != "" {
		c.ChatModel = p.ChatModel
	}
	if p.Precheck != nil {
		c.Precheck = *p.Precheck
	}
	if p.RequireComplete != nil {
		c.RequireComplete = *p.RequireComplete
	}
	return nil
}

// XDGDataDir returns the XDG data directory for Sentinel.
// On Linux: ~/.local/share/sentinel
// On macOS: ~/Library/Application Support/sentinel
// On Windows: %LOCALAPPDATA%\sentinel
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for Sentinel.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found. The API key is checked separately by
// RequireAPIKey because only backend commands need it.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SimulationConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Persona == "" {
		return ErrNoPersona
	}
	if !slices.Contains(report.Formats(), strings.ToLower(c.OutputFormat)) {
		return ErrInvalidOutputFormat
	}
	if !model.RegionAllows(c.Region, c.Standards) {
		return ErrStandardNotInRegion
	}
	return nil
}

// RequireAPIKey returns ErrNoAPIKey when no key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// RequireStandards returns ErrNoStandard when no standard is selected.
func (c *Config) RequireStandards() error {
	if len(c.Standards) == 0 {
		return ErrNoStandard
	}
	return nil
}
