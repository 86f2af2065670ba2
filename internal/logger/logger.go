package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/leonardcser/inmemcache/internal/cache"
)

const defaultLogName = "web-mcp.log"

var (
	mu      sync.Mutex
	std     *log.Logger
	logFile *os.File
	trace   atomic.Bool
)

// DefaultPath returns the log path next to the running executable, or in the
// current directory when that cannot be determined.
func DefaultPath() string {
	if exePath, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exePath), defaultLogName)
	}
	return "./" + defaultLogName
}

// Init initializes the logger to write to the provided file path.
// It creates parent directories if needed and opens the file in append mode.
// An empty path selects DefaultPath. Later calls are no-ops.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if std != nil {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	return nil
}

// Close closes the underlying log file, if open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	std = nil
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// SetTrace toggles TRACE output.
func SetTrace(enabled bool) { trace.Store(enabled) }

// Infof logs informational messages.
func Infof(format string, args ...any) { write("INFO", format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { write("WARN", format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write("ERROR", format, args...) }

// Tracef logs cache-level detail when tracing is enabled.
func Tracef(format string, args ...any) {
	if !trace.Load() {
		return
	}
	write("TRACE", format, args...)
}

// CacheSink forwards cache trace lines to Tracef.
func CacheSink() cache.Sink {
	return cache.SinkFunc(func(format string, args ...any) {
		Tracef("[cache] "+format, args...)
	})
}

func write(level string, format string, args ...any) {
	mu.Lock()
	l := std
	mu.Unlock()
	if l == nil {
		// Fallback: initialize with default if not already.
		_ = Init("")
		mu.Lock()
		l = std
		mu.Unlock()
	}
	if l != nil {
		l.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
