package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ActivityFeed/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New().Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
