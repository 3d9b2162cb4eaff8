// Package logger provides opinionated zap logging for plexbot
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(debug bool) *zap.Logger {
	return NewLoggerWithWriters(debug, os.Stdout)
}

// NewLoggerWithWriters writes colored console lines to every writer.
func NewLoggerWithWriters(debug bool, writers ...io.Writer) *zap.Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}

	enc := zapcore.NewConsoleEncoder(encoderConfig(true))
	return zap.New(zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(syncers...), level(debug)), zap.AddCaller())
}

// NewFileLogger appends JSON lines to path, for full screen views where
// stdout belongs to the display. The close func flushes and closes the file.
func NewFileLogger(debug bool, path string) (*zap.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	enc := zapcore.NewJSONEncoder(encoderConfig(false))
	l := zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), level(debug)), zap.AddCaller())

	return l, func() error {
		_ = l.Sync()
		return f.Close()
	}, nil
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	c := zap.NewProductionEncoderConfig()
	c.TimeKey = "time"
	c.EncodeTime = zapcore.ISO8601TimeEncoder
	if color {
		c.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return c
}

func level(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}
