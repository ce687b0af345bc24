package crossput

import "log/slog"

// logger is the package-wide structured logger for discovery/lifecycle
// events. It defaults to slog's default logger so the library is silent by
// convention until a caller opts in; see crossputctl for a fuller setup via
// internal/log.
var logger = slog.Default()

// SetLogger replaces the logger used for discovery and lifecycle tracing.
// Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}
