package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/snitch-monitoring/snitch/agent/internal/bootstrap"
	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

// Exit codes for snitch-agent.
const (
	exitSuccess      = 0
	exitGeneralError = 1
	exitUsage        = 2
	exitConfigIO     = 3
	exitConfigSyntax = 4
	exitConfigSchema = 5
	exitLogging      = 6
	exitPIDFile      = 7
	exitRuntime      = 8
)

// usageError marks bad command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exitCode maps an error from the root command to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}

	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}

	var se *bootstrap.StageError
	if !errors.As(err, &se) {
		return exitGeneralError
	}
	switch se.Stage {
	case bootstrap.StageConfig:
		switch config.KindOf(err) {
		case config.KindIO:
			return exitConfigIO
		case config.KindParse:
			return exitConfigSyntax
		default:
			return exitConfigSchema
		}
	case bootstrap.StageLogging:
		return exitLogging
	case bootstrap.StagePIDFile:
		return exitPIDFile
	case bootstrap.StageRuntime:
		return exitRuntime
	}
	return exitGeneralError
}

// report writes a diagnostic for err. Aggregated config problems are listed
// one per line.
func report(w io.Writer, err error) {
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(w, "snitch-agent: %v\nRun 'snitch-agent --help' for usage.\n", err)
		return
	}

	var se *bootstrap.StageError
	if errors.As(err, &se) {
		if problems := multierr.Errors(se.Err); len(problems) > 1 {
			fmt.Fprintf(w, "snitch-agent: %s stage failed with %d problems:\n", se.Stage, len(problems))
			for _, p := range problems {
				fmt.Fprintf(w, "  - %v\n", p)
			}
			return
		}
	}
	fmt.Fprintf(w, "snitch-agent: %v\n", err)
}
