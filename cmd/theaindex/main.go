package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Atchoum23/Thea-sub019/cmd/theaindex/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
