// Package logging provides structured logging for patch operations.
package logging

import (
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kvit-s/kvit-patch/internal/patch"
)

// Logger wraps a zap logger with patch-specific helpers.
type Logger struct {
	zap  *zap.Logger
	file *os.File
}

// NewLogger creates a new Logger instance that writes JSON lines to logPath.
// If logPath is empty, logging is disabled.
// If development is true, uses the development encoder config.
func NewLogger(logPath string, development bool) (*Logger, error) {
	if logPath == "" {
		return Nop(), nil
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var encoderConfig zapcore.EncoderConfig
	level := zapcore.InfoLevel
	if development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logFile),
		level,
	)

	return &Logger{zap: zap.New(core), file: logFile}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Close syncs the logger and closes the log file.
func (l *Logger) Close() error {
	err := l.zap.Sync()
	if l.file != nil {
		if cerr := l.file.Close(); err == nil {
			err = cerr
		}
		l.file = nil
	}
	return err
}

// PatchApplied logs a successful diff application.
func (l *Logger) PatchApplied(path string, oldLines, newLines int, duration time.Duration) {
	l.zap.Info("patch applied",
		zap.String("path", path),
		zap.Int("old_lines", oldLines),
		zap.Int("new_lines", newLines),
		zap.Duration("duration", duration),
	)
}

// PatchRejected logs a diff that could not be applied. Engine errors are
// logged with their kind and location.
func (l *Logger) PatchRejected(path string, err error) {
	fields := []zap.Field{
		zap.String("path", path),
		zap.Error(err),
	}
	var pe *patch.Error
	if errors.As(err, &pe) {
		fields = append(fields, zap.Stringer("kind", pe.Kind))
		if pe.LineNumber > 0 {
			fields = append(fields, zap.Int("line_number", pe.LineNumber))
		}
		if pe.Line != "" {
			fields = append(fields, zap.String("header", pe.Line))
		}
	}
	l.zap.Warn("patch rejected", fields...)
}

// ToolExecuted logs a tool execution with details.
func (l *Logger) ToolExecuted(toolName string, duration time.Duration, err error) {
	if err != nil {
		l.zap.Info("tool executed",
			zap.String("tool", toolName),
			zap.Duration("duration", duration),
			zap.Bool("success", false),
			zap.Error(err),
		)
		return
	}
	l.zap.Info("tool executed",
		zap.String("tool", toolName),
		zap.Duration("duration", duration),
		zap.Bool("success", true),
	)
}

// Error logs an error.
func (l *Logger) Error(msg string, err error) {
	l.zap.Error(msg, zap.Error(err))
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}
