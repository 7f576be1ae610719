// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ------------------- logger initialization -------------------

// configure points every logger at w.
func configure(w io.Writer) {
	Info = log.New(w, "INFO: ", flags)
	Warn = log.New(w, "WARN: ", flags)
	Error = log.New(w, "ERROR: ", flags)
	Debug = log.New(w, "DEBUG: ", flags)
}

// InitLogger reinitializes the logging system so that output goes to stdout
// and, when dir is non-empty, to a timestamped log file inside dir.
// The returned closer releases the file; it is a no-op for stdout-only logging.
func InitLogger(dir string) (io.Closer, error) {
	if dir == "" {
		configure(os.Stdout)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
	if err != nil {
		return nil, err
	}

	configure(io.MultiWriter(os.Stdout, file))
	return file, nil
}

// SetLogLevel discards Debug output in production.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// SetOutput redirects every logger to w. Tests use it to capture or silence output.
func SetOutput(w io.Writer) {
	configure(w)
}

// init makes the loggers usable before main runs InitLogger, e.g. in tests.
func init() {
	configure(os.Stdout)
}
