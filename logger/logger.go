// Package logger provides a configurable logger that can write to multiple outputs.
// Init must be called early in the application lifecycle before using other logger functions.
// Functions like AddOutput and SetEnabled will return errors if called before Init.
//
// Messages are conventionally prefixed with the emitting component, e.g.
// "[session] Connected to Cassandra cluster: prod". Level helpers prepend
// the level ahead of the component.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level tags a message's severity.
type Level string

const (
	LevelNone  Level = ""
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger is a configurable logger that can write to multiple outputs
type Logger struct {
	mu      sync.Mutex
	outputs []io.Writer
	prefix  string
	enabled bool
}

var (
	globalLogger atomic.Pointer[Logger]
	once         sync.Once
	globalBuffer *LogBuffer
	bufferOnce   sync.Once

	errNotInitialized = errors.New("logger not initialized: call logger.Init() first")
)

// New creates a standalone logger. Most code uses the package level
// functions backed by the logger created in Init.
func New(prefix string, outputs ...io.Writer) *Logger {
	return &Logger{
		outputs: append([]io.Writer(nil), outputs...),
		prefix:  prefix,
		enabled: true,
	}
}

// GetGlobalLogBuffer returns the global log buffer
func GetGlobalLogBuffer() *LogBuffer {
	bufferOnce.Do(func() {
		globalBuffer = NewLogBuffer(1000) // Keep last 1000 log entries
	})
	return globalBuffer
}

// Init initializes the global logger
func Init(prefix string, writeToStdout bool) {
	once.Do(func() {
		var outputs []io.Writer
		if writeToStdout {
			outputs = append(outputs, os.Stdout)
		}
		globalLogger.Store(New(prefix, outputs...))
	})
}

// AddOutput adds an additional output writer (e.g., for TUI log buffer).
func (l *Logger) AddOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, w)
}

// RemoveOutput removes an output writer.
func (l *Logger) RemoveOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.outputs[:0]
	for _, output := range l.outputs {
		if output != w {
			kept = append(kept, output)
		}
	}
	l.outputs = kept
}

// SetEnabled enables or disables logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Log writes a message at the given level to every output.
func (l *Logger) Log(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || len(l.outputs) == 0 {
		return
	}

	msg := strings.TrimSuffix(fmt.Sprintf(format, v...), "\n")
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s", l.prefix, msg)
	}
	if level != LevelNone {
		msg = fmt.Sprintf("[%s] %s", level, msg)
	}

	line := []byte(msg + "\n")
	for _, output := range l.outputs {
		output.Write(line)
	}
}

// AddOutput adds an output to the global logger.
// Returns an error if called before Init.
func AddOutput(w io.Writer) error {
	l := globalLogger.Load()
	if l == nil {
		return errNotInitialized
	}
	l.AddOutput(w)
	return nil
}

// RemoveOutput removes an output from the global logger.
// Returns an error if called before Init.
func RemoveOutput(w io.Writer) error {
	l := globalLogger.Load()
	if l == nil {
		return errNotInitialized
	}
	l.RemoveOutput(w)
	return nil
}

// SetEnabled toggles the global logger.
// Returns an error if called before Init.
func SetEnabled(enabled bool) error {
	l := globalLogger.Load()
	if l == nil {
		return errNotInitialized
	}
	l.SetEnabled(enabled)
	return nil
}

func logAt(level Level, format string, v ...interface{}) {
	l := globalLogger.Load()
	if l == nil {
		// Fallback to standard log if not initialized
		if level != LevelNone {
			format = "[" + string(level) + "] " + format
		}
		log.Printf(format, v...)
		return
	}
	l.Log(level, format, v...)
}

// Printf logs a formatted message
func Printf(format string, v ...interface{}) {
	logAt(LevelNone, format, v...)
}

// Infof logs an info-level formatted message
func Infof(format string, v ...interface{}) {
	logAt(LevelInfo, format, v...)
}

// Info logs an info-level message
func Info(v ...interface{}) {
	logAt(LevelInfo, "%s", fmt.Sprint(v...))
}

// Warnf logs a warning-level formatted message
func Warnf(format string, v ...interface{}) {
	logAt(LevelWarn, format, v...)
}

// Errorf logs an error-level formatted message
func Errorf(format string, v ...interface{}) {
	logAt(LevelError, format, v...)
}

// Error logs an error-level message
func Error(v ...interface{}) {
	logAt(LevelError, "%s", fmt.Sprint(v...))
}

// GetGlobalLogger returns the global logger instance (for testing/debugging)
func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}
