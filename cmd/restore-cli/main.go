package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"restore/internal/client/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.StdIO())
	stop()

	os.Exit(code)
}
