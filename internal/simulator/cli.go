package simulator

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/deuce/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initializes the global logger writing to stdout and, when
// logFile is set, to that file as well. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closeFn = func() { _ = f.Close() }
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Deuce Match Simulator
=====================

Plays random matches against a running deuce server through POST /events and
checks that every match ends on the score a local scorer computed.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string          Base URL of the service (default "http://localhost:9080")
  -type string         Match type (default "SINGLES_GRANDSLAM")
  -matches int         Number of matches (default 10)
  -points int          Maximum events per match (default 400)
  -home-bias float     Probability that home wins a point (default 0.5)
  -undo-rate float     Probability that an event is an undo (default 0.02)
  -resend-rate float   Probability that an event id is sent twice (default 0.05)
  -timeout duration    HTTP request timeout (default 10s)
  -wait duration       Time allowed for queued events to apply (default 30s)
  -output string       Save generated events as JSON
  -log string          Also write logs to this file
  -verbose             Enable debug logging
  -help                Show this help message

Examples:
  go run ./cmd/simulate -matches 100 -type doubles_atptour
  go run ./cmd/simulate -undo-rate 0.1 -verbose -log sim.log
`)
}
