package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the Require methods so
// callers can match them with errors.Is().
var (
	// ErrNoAPIKey is returned when neither GEMINI_API_KEY nor API_KEY is set.
	ErrNoAPIKey = errors.New("no API key: set GEMINI_API_KEY or API_KEY")

	// ErrNoStandard is returned when an assessment has no compliance standard.
	ErrNoStandard = errors.New("no compliance standard specified: use --standard or a profile")

	// ErrNoPersona is returned when the persona is empty.
	ErrNoPersona = errors.New("no persona specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the simulation concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid simulation concurrency: must be positive")

	// ErrInvalidOutputFormat is returned for an unknown export format.
	ErrInvalidOutputFormat = errors.New("invalid output format: use simple, markdown, json, terraform, report or terminal")

	// ErrStandardNotInRegion is returned when a selected standard is not
	// offered in the selected region.
	ErrStandardNotInRegion = errors.New("a selected standard is not offered in the selected region")

	// ErrProfileNotFound is returned when --profile names a profile the
	// configuration file does not define.
	ErrProfileNotFound = errors.New("profile not found in configuration file")
)
