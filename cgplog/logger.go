// Package cgplog sets up the client's logger, writing to a log file
// and/or stderr.
package cgplog

import (
	"io"
	"log/slog"
	"os"
)

var logFile io.Closer

// NewLogger opens the log file (when filename is non-empty) and returns
// a Logger. With no destinations at all, output is discarded.
func NewLogger(filename string, logToStderr bool, debug bool) (*slog.Logger, error) {
	var writers []io.Writer

	if filename != "" {
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		logFile = file
		writers = append(writers, file)
	}
	if logToStderr {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		return NewNoOpLogger(), nil
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// Close closes the log file if one was opened.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// NewNoOpLogger creates a logger that discards all output.
func NewNoOpLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
