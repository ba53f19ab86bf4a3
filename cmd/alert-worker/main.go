// Command alert-worker consumes budget alerts from the broker and records them in the log.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"budget-tracker/internal/amqp"
	"budget-tracker/internal/config"
	"budget-tracker/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Alert worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("alert-worker", pflag.ContinueOnError)
	envFile := flagSet.String("env-file", ".env", "dotenv file loaded before reading the environment")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.BrokerEnabled() {
		return errors.New("AMQP_URL is required for the alert worker")
	}

	logger := logging.New(cfg, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dial := func() (*amqp.Client, error) {
		return amqp.NewClient(cfg.Broker.URL, cfg.Broker.Exchange, cfg.Broker.Queue, cfg.Broker.PublishTimeout)
	}

	logger.Info("Starting alert worker", "exchange", cfg.Broker.Exchange, "queue", cfg.Broker.Queue)

	err = amqp.ConsumeWithRetry(ctx, dial, newAlertHandler(logger))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Alert worker stopped gracefully")
	return nil
}
