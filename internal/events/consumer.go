package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
	prefetch   = 50
)

// Handler processes one decoded event. A returned error rejects the delivery
// without requeue.
type Handler func(ctx context.Context, ev RentalEvent) error

// Consume reads QueueName until ctx is cancelled, reconnecting with
// exponential backoff whenever the broker goes away.
func Consume(ctx context.Context, url string, handler Handler, logger *slog.Logger) error {
	backoff := minBackoff
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("rental_consumer_dial_failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = minBackoff

		err = consumeLoop(ctx, conn, handler, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("rental_consumer_loop_ended", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handler Handler, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		logger.Warn("rental_consumer_qos_failed", "error", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			handleDelivery(ctx, d, handler, logger)
		}
	}
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler, logger *slog.Logger) {
	ev, err := Decode(d.Body)
	if err == nil {
		err = handler(ctx, ev)
	}
	if err != nil {
		logger.Error("rental_event_rejected", "error", err, "delivery_tag", d.DeliveryTag)
		// no requeue, a poison message would spin forever
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
