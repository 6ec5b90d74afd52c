// Command notifier consumes overspend alerts from RabbitMQ and logs them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finance-tracker/internal/config"
	"finance-tracker/internal/events"
	"finance-tracker/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("notifier", flag.ContinueOnError)
	envFile := fs.String("env", os.Getenv("ENV_FILE"), "Path to .env file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required")
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).
		With(logging.FieldComponent, logging.ComponentEvents)

	client, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		[]string{events.TypeBudgetOverspent}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.Consume(ctx, alertHandler(logger, cfg.CurrencySymbol))
	if errors.Is(err, context.Canceled) {
		logger.Info("notifier stopped")
		return nil
	}
	return err
}

// alertHandler logs overspend alerts; other event types are ignored.
func alertHandler(log *slog.Logger, currency string) func(context.Context, events.Event) error {
	return func(ctx context.Context, e events.Event) error {
		if e.Type != events.TypeBudgetOverspent {
			log.DebugContext(ctx, "ignoring event", "type", e.Type)
			return nil
		}
		log.WarnContext(ctx, "budget overspent",
			logging.FieldUserID, e.UserID,
			"total_income", currency+e.TotalIncome.String(),
			"total_expense", currency+e.TotalExpense.String(),
			"deficit", currency+(e.TotalExpense-e.TotalIncome).String(),
			"trigger_category", e.Category,
			"occurred_at", e.OccurredAt,
		)
		return nil
	}
}
