package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hcm/internal/app/commands"
	"hcm/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf := config.Load()
	if err := commands.New(&conf).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
