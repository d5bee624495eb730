// Package logger builds configured slog.Logger instances for the CLI and
// the HTTP client layer.
//
// The factory supports JSON and text output, level selection by name, and
// static attributes attached to every record. A handler decorator injects
// request-scoped attributes from context so a request identifier set by the
// API client shows up on every log line emitted while the call is in flight.
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatText),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithAttr(slog.String("app", "stockdash")),
//	)
package logger
