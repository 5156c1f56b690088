package logger

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Logger writes leveled console output. Error and info lines are always
// shown, debug lines only in verbose mode.
type Logger struct {
	mu          sync.Mutex
	verbose     bool
	errorLogger *log.Logger
	infoLogger  *log.Logger
	debugLogger *log.Logger
}

// New creates a Logger writing info and debug lines to out and error lines
// to errOut.
func New(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{
		verbose:     verbose,
		errorLogger: log.New(errOut, "[ERROR] ", log.LstdFlags),
		infoLogger:  log.New(out, "[INFO]  ", log.LstdFlags),
		debugLogger: log.New(out, "[DEBUG] ", log.LstdFlags),
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard, false)
}

// SetVerbose toggles debug output.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// IsVerbose reports whether debug output is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// SetFlags sets the output flags for all levels (like log.SetFlags).
func (l *Logger) SetFlags(flag int) {
	l.errorLogger.SetFlags(flag)
	l.infoLogger.SetFlags(flag)
	l.debugLogger.SetFlags(flag)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintf(format, v...))
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprintf(format, v...))
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.IsVerbose() {
		l.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

// Printf is an alias for Debugf so the logger satisfies
// retryablehttp.Logger; request-level chatter only shows up in verbose mode.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.IsVerbose() {
		l.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}
