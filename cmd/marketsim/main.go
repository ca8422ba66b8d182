package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/erain9/tickbook/pkg/marketsim"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := marketsim.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	book := core.NewOrderBook(core.Config{})
	defer book.Close()

	sim, err := marketsim.NewSimulator(cfg, book, logger)
	if err != nil {
		logger.Error("Failed to create simulator", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Market simulator running",
		"book", cfg.BookName,
		"mid_price", cfg.MidPrice,
		"levels", cfg.NumLevels)

	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Simulator stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutting down", "resting_orders", book.Size())
}
