package pathfinder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// pkgLog is only replaced through SetLogger.
var (
	logMu  sync.RWMutex
	pkgLog = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
)

// SetLogger replaces the package logger. Passing nil discards all output.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logMu.Lock()
	pkgLog = l
	logMu.Unlock()
}

func logger() *slog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return pkgLog
}

// DebugLog prints only when Debug is on.
func DebugLog(format string, args ...interface{}) {
	if !Debug {
		return
	}
	logger().Debug(fmt.Sprintf(format, args...))
}

var once sync.Once

func DebugLogOnce(format string, args ...interface{}) {
	if !Debug {
		return
	}
	once.Do(func() {
		logger().Debug(fmt.Sprintf(format, args...))
	})
}
