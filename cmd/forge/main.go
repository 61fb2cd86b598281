package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ozacod/forge/internal/app/cli/root"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := root.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
