package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Saad0095/leaders-tax-cli/pkg/config"
)

var logger *log.Logger

// Options controls where and how verbosely the CLI logs.
type Options struct {
	Verbose bool
	Level   string
	File    string
}

// Init initializes the logger from config and the --verbose flag
func Init(verbose bool) {
	Setup(Options{
		Verbose: verbose,
		Level:   config.GetString("log.level"),
		File:    config.GetString("log.file"),
	})
}

// Setup builds the package logger. Log files are rotated; without a file the
// logger writes to stderr.
func Setup(opts Options) {
	var w io.Writer = os.Stderr
	if opts.File != "" {
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
	}
	SetOutput(w, opts)
}

// SetOutput builds the package logger on top of an arbitrary writer.
func SetOutput(w io.Writer, opts Options) {
	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "leaders-cli",
	})
	logger.SetLevel(parseLevel(opts.Level, opts.Verbose))
}

func parseLevel(level string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// Fatal logs a fatal message and exits
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatal(msg, args...)
	} else {
		os.Exit(1)
	}
}

// GetLogger returns the logger instance
func GetLogger() *log.Logger {
	return logger
}
