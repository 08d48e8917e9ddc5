package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"knurl/app"
	"knurl/config"
	"knurl/internal/buildinfo"
	"knurl/logs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println(buildinfo.Line())
		return
	}

	log := logs.New(cfg.Trace)
	log.Info("starting", "version", buildinfo.Short(), "sim", cfg.Sim)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("panel failed", "error", err)
		os.Exit(1)
	}
	log.Info("panel stopped")
}
