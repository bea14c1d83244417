package app

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger interface for app layer
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// levelLogger writes to stderr with a minimum level filter
type levelLogger struct {
	output io.Writer
	level  int
}

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// NewLogger creates a leveled logger writing to output.
// Level is one of "debug", "info", "warn", "error"; unknown values mean info.
func NewLogger(output io.Writer, level string) Logger {
	l := levelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = levelDebug
	case "warn", "warning":
		l = levelWarn
	case "error":
		l = levelError
	}
	return &levelLogger{output: output, level: l}
}

func (l *levelLogger) log(lv int, prefix, format string, args ...interface{}) {
	if lv < l.level {
		return
	}
	fmt.Fprintf(l.output, prefix+": "+format+"\n", args...)
}

func (l *levelLogger) Debug(format string, args ...interface{}) {
	l.log(levelDebug, "DEBUG", format, args...)
}

func (l *levelLogger) Info(format string, args ...interface{}) {
	l.log(levelInfo, "INFO", format, args...)
}

func (l *levelLogger) Warn(format string, args ...interface{}) {
	l.log(levelWarn, "WARN", format, args...)
}

func (l *levelLogger) Error(format string, args ...interface{}) {
	l.log(levelError, "ERROR", format, args...)
}

// globalLogger is the logger instance used by the app layer
var globalLogger Logger = NewLogger(os.Stderr, "info")

// SetLogger sets the global logger for the app layer
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current logger
func GetLogger() Logger {
	return globalLogger
}
