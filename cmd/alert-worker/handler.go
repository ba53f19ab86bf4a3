package main

import (
	"context"
	"log/slog"

	"budget-tracker/internal/amqp"

	"github.com/google/uuid"
)

// newAlertHandler returns the consumer callback. Returning an error requeues the message,
// so alerts without a user or category are logged and acked instead.
func newAlertHandler(logger *slog.Logger) func(context.Context, *amqp.BudgetAlertMessage) error {
	return func(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
		if msg.UserID == uuid.Nil || msg.CategoryID == uuid.Nil {
			logger.WarnContext(ctx, "Dropping incomplete budget alert", "type", msg.Type)
			return nil
		}

		attrs := []any{
			"user_id", msg.UserID,
			"category_id", msg.CategoryID,
			"expense_id", msg.ExpenseID,
			"type", msg.Type,
			"spent", msg.Spent.StringFixed(2),
			"limit", msg.Limit.StringFixed(2),
			"month", msg.Month,
			"year", msg.Year,
		}
		if msg.Type == "warning" {
			attrs = append(attrs, "percentage", msg.Percentage)
		}

		level := slog.LevelInfo
		if msg.Type == "exceeded" {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, msg.Message, attrs...)
		return nil
	}
}
