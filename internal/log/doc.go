// Package log builds slog loggers that mask credentials.
//
// Sentinel logs backend calls and session events, and assessed material or
// chat turns routinely contain pasted configuration. SecureHandler masks
// attributes whose key names a credential (api_key, db_password), values
// that are credentials themselves (JWTs, bearer tokens, PEM keys), and keys
// or tokens embedded in messages and errors, at every level.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("generating assessment", "model", "gemini-3-pro-preview")
package log
