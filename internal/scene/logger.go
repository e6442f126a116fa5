package scene

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger used for store maintenance such as group
// extent updates. The package is silent until it is called; nil silences it
// again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

// Logger returns the package's current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
