package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ActivityLogger writes structured event records for ledger changes and alerts
type ActivityLogger struct {
	logger *slog.Logger
}

func NewActivityLogger(logger *slog.Logger) ActivityLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityLogger{
		logger: logger,
	}
}

func (al *ActivityLogger) LogExpenseCreated(ctx context.Context, userID, expenseID, categoryID uuid.UUID, amount string) {
	al.logger.InfoContext(ctx, "expense created",
		slog.String("event_type", "expense_created"),
		slog.String("user_id", userID.String()),
		slog.String("expense_id", expenseID.String()),
		slog.String("category_id", categoryID.String()),
		slog.String("amount", amount),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogExpenseUpdated(ctx context.Context, userID, expenseID uuid.UUID, updatedFields []string) {
	al.logger.InfoContext(ctx, "expense updated",
		slog.String("event_type", "expense_updated"),
		slog.String("user_id", userID.String()),
		slog.String("expense_id", expenseID.String()),
		slog.Any("updated_fields", updatedFields),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogExpenseDeleted(ctx context.Context, userID, expenseID uuid.UUID) {
	al.logger.InfoContext(ctx, "expense deleted",
		slog.String("event_type", "expense_deleted"),
		slog.String("user_id", userID.String()),
		slog.String("expense_id", expenseID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogCategoryChanged(ctx context.Context, userID, categoryID uuid.UUID, action string) {
	al.logger.InfoContext(ctx, "category changed",
		slog.String("event_type", "category_"+action),
		slog.String("user_id", userID.String()),
		slog.String("category_id", categoryID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogBudgetSet(ctx context.Context, userID, budgetID, categoryID uuid.UUID, limit string, month, year int) {
	al.logger.InfoContext(ctx, "budget set",
		slog.String("event_type", "budget_set"),
		slog.String("user_id", userID.String()),
		slog.String("budget_id", budgetID.String()),
		slog.String("category_id", categoryID.String()),
		slog.String("limit", limit),
		slog.Int("month", month),
		slog.Int("year", year),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogBudgetDeleted(ctx context.Context, userID, budgetID uuid.UUID) {
	al.logger.InfoContext(ctx, "budget deleted",
		slog.String("event_type", "budget_deleted"),
		slog.String("user_id", userID.String()),
		slog.String("budget_id", budgetID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogBudgetAlert(ctx context.Context, userID, categoryID uuid.UUID, alertType, spent, limit string) {
	al.logger.InfoContext(ctx, "budget alert raised",
		slog.String("event_type", "budget_alert"),
		slog.String("user_id", userID.String()),
		slog.String("category_id", categoryID.String()),
		slog.String("alert_type", alertType),
		slog.String("spent", spent),
		slog.String("limit", limit),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogAlertEvaluationFailed(ctx context.Context, userID, expenseID uuid.UUID, errorMsg string) {
	al.logger.WarnContext(ctx, "budget alert evaluation failed",
		slog.String("event_type", "alert_evaluation_failed"),
		slog.String("user_id", userID.String()),
		slog.String("expense_id", expenseID.String()),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogAlertPublishFailed(ctx context.Context, userID, categoryID uuid.UUID, errorMsg string) {
	al.logger.WarnContext(ctx, "budget alert publish failed",
		slog.String("event_type", "alert_publish_failed"),
		slog.String("user_id", userID.String()),
		slog.String("category_id", categoryID.String()),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

func (al *ActivityLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationIDFrom(ctx)),
	)
}

type correlationIDKey struct{}

// WithCorrelationID stores the request trace id so log records can be joined up
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func CorrelationIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return correlationID
	}

	return ""
}
