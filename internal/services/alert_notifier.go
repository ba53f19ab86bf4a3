package services

import (
	"context"
	"errors"
	"time"

	"budget-tracker/internal/amqp"
)

const alertBrokerService = "amqp"

// alertNotifier publishes budget alerts through a circuit breaker so a dead broker
// costs one fast check instead of a publish timeout per expense.
type alertNotifier struct {
	publisher amqp.Publisher
	breaker   CircuitBreakerInterface
	activity  ActivityLoggerInterface
	metrics   MetricsRecorderInterface
	timeout   time.Duration
}

func NewAlertNotifier(
	publisher amqp.Publisher,
	breaker CircuitBreakerInterface,
	activity ActivityLoggerInterface,
	metrics MetricsRecorderInterface,
	timeout time.Duration,
) AlertNotifierInterface {
	return &alertNotifier{
		publisher: publisher,
		breaker:   breaker,
		activity:  activity,
		metrics:   metrics,
		timeout:   timeout,
	}
}

func (n *alertNotifier) Notify(ctx context.Context, msg amqp.BudgetAlertMessage) {
	if n.breaker.IsOpen() {
		n.recordOutcome("skipped")
		n.activity.LogAlertPublishFailed(ctx, msg.UserID, msg.CategoryID, ErrCircuitBreakerOpen.Error())
		return
	}

	before := n.breaker.GetState()

	// The request may finish before the broker answers; publishing must not be cut short by that.
	publishCtx := context.WithoutCancel(ctx)
	if n.timeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(publishCtx, n.timeout)
		defer cancel()
	}

	err := n.publisher.PublishBudgetAlert(publishCtx, msg)
	if err != nil {
		n.breaker.RecordFailure()
		n.recordOutcome("failed")
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.New("publish timed out")
		}
		n.activity.LogAlertPublishFailed(ctx, msg.UserID, msg.CategoryID, err.Error())
	} else {
		n.breaker.RecordSuccess()
		n.recordOutcome("published")
	}

	if after := n.breaker.GetState(); after != before {
		n.activity.LogCircuitBreakerStateChange(ctx, alertBrokerService, before.String(), after.String())
		n.metrics.RecordGauge(MetricCircuitBreakerState, float64(after), map[string]string{"service": alertBrokerService})
	}
}

func (n *alertNotifier) recordOutcome(status string) {
	n.metrics.IncrementCounter(MetricAlertPublished, map[string]string{"status": status})
}
