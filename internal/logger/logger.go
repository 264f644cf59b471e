// Package logger provides the diagnostic logger for the support widget.
// The TUI owns the terminal, so logs normally go to a file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded logger writing to w
func New(debug bool, w io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// NewFile opens (or creates) path and returns a logger appending to it.
// The returned close function syncs the logger and closes the file.
func NewFile(debug bool, path string) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log := New(debug, f)
	closeFn := func() error {
		_ = log.Sync()
		return f.Close()
	}
	return log, closeFn, nil
}
