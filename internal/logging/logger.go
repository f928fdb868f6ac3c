package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogFileName is the name of the active log file inside the log directory.
const LogFileName = "tmuxup.log"

// Level names as they appear in log records.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// slogLevels maps the level vocabulary onto slog's levels.
var slogLevels = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Logger writes structured JSON log records. Context attributes added
// through the With methods stick to every record the child logger
// emits. Safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	writer *RotatingWriter
	mu     sync.Mutex // guards writer lifecycle
}

// NewLogger opens {logDir}/tmuxup.log with the default rotation
// settings. Records below level are dropped; an unrecognized level
// string means INFO. An empty logDir sends records to stderr instead,
// without rotation.
func NewLogger(logDir string, level string) (*Logger, error) {
	return NewLoggerWithRotation(logDir, level, DefaultRotationConfig())
}

// NewLoggerWithRotation is NewLogger with explicit rotation settings.
func NewLoggerWithRotation(logDir string, level string, rotation RotationConfig) (*Logger, error) {
	l := &Logger{}

	out := io.Writer(os.Stderr)
	if logDir != "" {
		writer, err := NewRotatingWriter(filepath.Join(logDir, LogFileName), rotation)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.writer = writer
		out = writer
	}

	l.logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	return l, nil
}

// parseLevel resolves a level string to slog's representation, INFO when
// unrecognized.
func parseLevel(level string) slog.Level {
	if lv, ok := slogLevels[strings.ToUpper(level)]; ok {
		return lv
	}
	return slog.LevelInfo
}

// child wraps a derived slog logger, sharing the parent's writer so
// Close works from any logger in the family.
func (l *Logger) child(s *slog.Logger) *Logger {
	return &Logger{logger: s, writer: l.writer}
}

// WithSession stamps every record from the returned logger with the
// session name.
func (l *Logger) WithSession(session string) *Logger {
	return l.child(l.logger.With("session", session))
}

// WithWindow stamps every record from the returned logger with the
// window name.
func (l *Logger) WithWindow(window string) *Logger {
	return l.child(l.logger.With("window", window))
}

// WithRun stamps every record from the returned logger with a run
// identifier, grouping the commands of one CLI invocation.
func (l *Logger) WithRun(runID string) *Logger {
	return l.child(l.logger.With("run_id", runID))
}

// With returns a child logger carrying arbitrary alternating key-value
// attributes. Pairs whose key is not a string are dropped.
func (l *Logger) With(args ...any) *Logger {
	clean := make([]any, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		if _, ok := args[i].(string); ok {
			clean = append(clean, args[i], args[i+1])
		}
	}
	if len(clean) == 0 {
		return l
	}
	return l.child(l.logger.With(clean...))
}

// Debug logs at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelError, msg, args...)
}

// Close flushes and closes the log file. Closing a stderr or already
// closed logger is a no-op.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}
	if err := l.writer.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.writer = nil
	return nil
}

// NopLogger returns a Logger that discards everything. Used in tests
// and when logging is disabled.
func NopLogger() *Logger {
	return &Logger{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// ParseLevel canonicalizes a level string, INFO when unrecognized.
func ParseLevel(level string) string {
	up := strings.ToUpper(level)
	if _, ok := slogLevels[up]; ok {
		return up
	}
	return LevelInfo
}

// ValidLevels returns the accepted level strings in severity order.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
