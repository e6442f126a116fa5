package engine

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger used by the engine. By default the engine
// is silent. Pass nil to restore that.
//
// Debug records describe gesture transitions (mode, handle, element) and
// aborted gestures. SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

// Logger returns the engine's current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
