package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/simulator"
)

const (
	defaultUndoRate   = 0.02
	defaultResendRate = 0.05
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		matchType  = flag.String("type", "SINGLES_GRANDSLAM", "Match type")
		matches    = flag.Int("matches", simulator.DefaultMatches, "Number of matches")
		points     = flag.Int("points", simulator.DefaultPoints, "Maximum events per match")
		homeBias   = flag.Float64("home-bias", simulator.DefaultHomeBias, "Probability that home wins a point")
		undoRate   = flag.Float64("undo-rate", defaultUndoRate, "Probability that an event is an undo")
		resendRate = flag.Float64("resend-rate", defaultResendRate, "Probability that an event id is sent twice")
		timeout    = flag.Duration("timeout", simulator.DefaultTimeout, "HTTP request timeout")
		wait       = flag.Duration("wait", simulator.DefaultWait, "Time allowed for queued events to apply")
		outputFile = flag.String("output", "", "Save generated events as JSON")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp(os.Stdout)
		return
	}

	mt, err := rules.ParseMatchType(*matchType)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	closeLog, err := simulator.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &simulator.Config{
		BaseURL:    *baseURL,
		MatchType:  mt,
		Matches:    *matches,
		Points:     *points,
		HomeBias:   *homeBias,
		UndoRate:   *undoRate,
		ResendRate: *resendRate,
		Timeout:    *timeout,
		Wait:       *wait,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}
	if _, err := simulator.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		closeLog()
		os.Exit(1)
	}
}
