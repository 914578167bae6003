package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/alfalfa"
)

// Exit codes for CLI commands.
const (
	exitOK         = 0
	exitError      = 1
	exitTimeout    = 2
	exitSimulation = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "alfalfa: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to a process exit code so scripts can tell a run
// that failed on the server from one that merely took too long.
func exitCode(err error) int {
	var simErr *alfalfa.SimulationError
	if errors.As(err, &simErr) {
		return exitSimulation
	}
	var clientErr *alfalfa.ClientError
	if errors.As(err, &clientErr) && clientErr.Kind == alfalfa.KindTimeout {
		return exitTimeout
	}
	return exitError
}
