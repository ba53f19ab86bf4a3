package amqp

import (
	"context"
	"log/slog"
)

// Publisher sends budget alerts to the broker.
type Publisher interface {
	PublishBudgetAlert(ctx context.Context, msg BudgetAlertMessage) error
	Close() error
}

// NoopPublisher is used when no broker URL is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) PublishBudgetAlert(ctx context.Context, msg BudgetAlertMessage) error {
	slog.DebugContext(ctx, "Broker disabled, dropping budget alert",
		"user_id", msg.UserID,
		"category_id", msg.CategoryID,
		"type", msg.Type)
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
