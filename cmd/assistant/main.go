package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/bootstrap"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/logger"
)

func main() {
	log := logger.JSON()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("assistant server failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx := logger.WithContext(context.Background(), log)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.BuildServer(log)
	if err != nil {
		return err
	}
	defer services.Store.Close()

	return services.Server.Serve(ctx)
}
