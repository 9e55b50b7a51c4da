package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"booklease/internal/config"
	"booklease/internal/events"
	"booklease/internal/logger"
)

// rental-events tails the rental event queue and logs each event. It is the
// hook point for receipts and reminders.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("rental_events_consumer_starting", "queue", events.QueueName)
	err = events.Consume(ctx, cfg.RabbitMQURL, logEvent(appLogger), appLogger)
	if err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("rental_events_consumer_failed", "error", err)
		os.Exit(1)
	}
	appLogger.Info("rental_events_consumer_stopped")
}

func logEvent(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, ev events.RentalEvent) error {
		logger.InfoContext(ctx, "rental_event",
			"type", ev.Type,
			"rental_id", ev.RentalID,
			"user_id", ev.UserID,
			"book_id", ev.BookID,
			"book_title", ev.BookTitle,
			"days", ev.Days,
			"amount", ev.Amount,
			"price_paid", ev.PricePaid,
			"rental_end", ev.RentalEnd,
			"occurred_at", ev.OccurredAt,
		)
		return nil
	}
}
