// Package debug is the dashboard's diagnostic log.
//
// Nothing is written unless TITANIC_DEBUG is set:
//
//	TITANIC_DEBUG=1 titanic --robot-render
//
// Lines carry a prefix and a microsecond timestamp and go to stderr, or to the
// writer given to SetOutput.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

// EnvVar turns debug logging on when set to any non-empty value.
const EnvVar = "TITANIC_DEBUG"

const prefix = "[TITANIC_DEBUG] "

var (
	enabled = os.Getenv(EnvVar) != ""
	logger  = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// Enabled reports whether debug logging is on.
func Enabled() bool { return enabled }

// SetEnabled turns logging on or off at runtime.
func SetEnabled(e bool) { enabled = e }

// SetOutput redirects debug output. The TUI points it at a file so log lines
// do not land on the alternate screen.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

// Log writes one line when enabled.
func Log(format string, args ...any) {
	if enabled {
		logger.Printf(format, args...)
	}
}

// LogEnterExit logs entry and exit with timing:
//
//	defer debug.LogEnterExit("render")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	if enabled {
		logger.Printf("%s: %T = %+v", name, v, v)
	}
}
