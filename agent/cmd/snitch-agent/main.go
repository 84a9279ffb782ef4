package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/snitch-monitoring/snitch/agent/internal/collect"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(collect.NewIdle).ExecuteContext(ctx)
	cancel()

	if err != nil {
		report(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
