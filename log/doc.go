// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("script loaded", slog.String("path", path))
//
// # Configuration
//
// Configuration is applied at creation time using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options overridden, and
// [Logger.With] derives one that adds attributes to every record.
//
// # Levels
//
// In addition to the four [slog] levels, [LevelTrace] sits below
// [LevelDebug] and is used for high-volume diagnostics such as per-node
// evaluation traces.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText] are supported. With [WithPretty]
// enabled, both are rendered with terminal colors.
//
// # Package Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that [Config] reconfigures. The CLI configures it once from
// its flags.
package log
