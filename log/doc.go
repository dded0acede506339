// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("application started", slog.String("version", "1.0.0"))
//	logger.Error("failed to connect", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with further options applied, and [Config]
// does the same for the package-level logger used by [Info], [Debug] and
// friends.
//
// # Adding Attributes
//
// Attributes can be added to the logger to be included in all subsequent
// log messages using the [Logger.With] method:
//
//	logger = logger.With(slog.String("component", "parser"))
//	logger.Info("parse complete") // includes component=parser
//
// # Context-Aware Logging
//
// Each logging level has both a context-aware and context-unaware variant.
// Context-unaware functions use [DefaultContextProvider], which returns
// [context.TODO] by default.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level
// are discarded. Trace is below slog's Debug and is intended for
// per-operation detail such as parser progress.
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and
// [FormatText]. Either can be rendered plainly, through the standard slog
// handlers, or colorized for terminals with [WithPretty].
//
// # Zero Value
//
// The zero [Logger] discards all messages. Libraries accept a Logger by
// value and log unconditionally; callers that want output pass one built
// with [Make].
package log
