// Package logger provides structured logging for the WasteWise client.
//
// It wraps log/slog:
//
//   - logger.go: configuration, dynamic level, default logger
//   - context.go: request ID propagation
//   - redact.go: masking of bearer tokens and credentials
//
// Tokens never reach a log line in clear text. JWT-shaped values are masked
// wherever they appear, and attributes whose key names a credential are
// fully redacted.
package logger
