package diag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// memorySampleInterval is how often the in-process memory usage is
// recorded.
const memorySampleInterval = 10 * time.Minute

// Logger wraps a zap logger bound to a diagnostics file. The zero value
// (and a nil *Logger) is a usable no-op.
type Logger struct {
	zl   *zap.Logger
	path string
}

// New creates a diagnostics logger writing JSON lines to a timestamped
// file under dir/diagnostics/. The returned error is informational;
// callers are expected to continue without diagnostics when it is
// non-nil.
func New(dir, version string) (*Logger, error) {
	diagDir := filepath.Join(dir, "diagnostics")
	if err := os.MkdirAll(diagDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics directory: %w", err)
	}

	path := filepath.Join(diagDir,
		fmt.Sprintf("diag_%s.log", time.Now().Format("20060102_150405")))

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	zl, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize diagnostics logger: %w", err)
	}

	l := &Logger{zl: zl, path: path}
	l.zl.Info("diagnostics started",
		zap.String("version", version),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH),
		zap.String("go", runtime.Version()),
	)
	return l, nil
}

// Path returns the diagnostics file path, or "" for a no-op logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Event records a named session event with optional fields.
func (l *Logger) Event(msg string, fields ...zap.Field) {
	if l == nil || l.zl == nil {
		return
	}
	l.zl.Info(msg, fields...)
}

// Error records a session error.
func (l *Logger) Error(msg string, err error) {
	if l == nil || l.zl == nil {
		return
	}
	l.zl.Error(msg, zap.Error(err))
}

// SampleMemory records a single snapshot of the process heap.
func (l *Logger) SampleMemory() {
	if l == nil || l.zl == nil {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	l.zl.Info("memory sample",
		zap.Uint64("heapAllocBytes", m.HeapAlloc),
		zap.Uint64("heapSysBytes", m.HeapSys),
		zap.Uint32("numGC", m.NumGC),
		zap.Int("goroutines", runtime.NumGoroutine()),
	)
}

// RunMemorySampler records memory samples until ctx is cancelled. It
// takes one sample immediately, then one per interval.
func (l *Logger) RunMemorySampler(ctx context.Context) {
	if l == nil || l.zl == nil {
		return
	}
	l.SampleMemory()

	ticker := time.NewTicker(memorySampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.SampleMemory()
		}
	}
}

// Close flushes and detaches the underlying logger.
func (l *Logger) Close() {
	if l == nil || l.zl == nil {
		return
	}
	l.zl.Info("diagnostics stopped")
	_ = l.zl.Sync()
	l.zl = nil
}
