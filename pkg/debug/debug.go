// Package debug is pz's opt-in diagnostic log. Set PZ_DEBUG to any value to
// enable it:
//
//	PZ_DEBUG=1 pz --source tree.json --export out.svg
//
// Messages go to stderr with a timestamp. While disabled every helper
// returns immediately.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

const prefix = "[PZ_DEBUG] "

var (
	enabled = os.Getenv("PZ_DEBUG") != ""
	logger  = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
)

// Enabled reports whether debug output is on.
func Enabled() bool { return enabled }

// SetEnabled turns debug output on or off.
func SetEnabled(on bool) { enabled = on }

// SetOutput redirects debug output, e.g. to a file while the explorer owns
// the terminal.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

// Log writes a printf-style message.
func Log(format string, args ...any) {
	if enabled {
		logger.Printf(format, args...)
	}
}

// LogTiming records how long name took.
func LogTiming(name string, d time.Duration) {
	if enabled {
		logger.Printf("%s took %v", name, d)
	}
}

// LogEnterExit logs entry now and exit, with the elapsed time, when the
// returned func runs:
//
//	defer debug.LogEnterExit("export")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() { logger.Printf("<- %s (%v)", name, time.Since(start)) }
}
