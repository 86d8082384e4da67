// Package logging configures the process logger.
//
// New builds a log/slog logger writing JSON or text with a level held in a
// slog.LevelVar, so a configuration reload can change verbosity without
// rebuilding handlers. With redaction enabled, every record passes through
// RedactingHandler, which masks bearer tokens, key=value credentials,
// sensitive attribute keys, and the configured upstream auth tokens.
package logging
