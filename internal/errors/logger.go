package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is a JSON slog logger that expands AppErrors into fields.
type Logger struct {
	logger *slog.Logger
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New returns a stdout logger for a named level.
func New(level string) (*Logger, error) {
	lvl, ok := levels[level]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return NewLogger(lvl), nil
}

func NewLogger(level slog.Level) *Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	return &Logger{logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewWithWriter(io.Discard, slog.LevelError)
}

func (l *Logger) Debug(message string, args ...any) { l.logger.Debug(message, args...) }
func (l *Logger) Info(message string, args ...any)  { l.logger.Info(message, args...) }
func (l *Logger) Warn(message string, args ...any)  { l.logger.Warn(message, args...) }

// errorFields flattens err into log attributes. AppErrors contribute their
// type, code and context; anything else just its message.
func errorFields(err error) []any {
	appErr, ok := asApp(err)
	if !ok {
		return []any{"error", err.Error()}
	}
	fields := []any{"error_type", appErr.Type, "error_code", appErr.Code, "error_message", appErr.Message}
	for k, v := range appErr.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// LogError logs err at error level
func (l *Logger) LogError(err error, message string, args ...any) {
	l.logger.Error(message, append(errorFields(err), args...)...)
}

// LogDegraded records a component whose score fell back to zero.
func (l *Logger) LogDegraded(err error, component string, args ...any) {
	fields := []any{"component", component, "error", err.Error()}
	if appErr, ok := asApp(err); ok {
		fields = append(fields, "error_type", appErr.Type, "error_code", appErr.Code)
	}
	l.logger.Warn("score degraded", append(fields, args...)...)
}
