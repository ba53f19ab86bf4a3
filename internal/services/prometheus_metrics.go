package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "budget_tracker"

// Metric names accepted by PrometheusMetrics
const (
	MetricExpenseCreated      = "expense.created"
	MetricExpenseDeleted      = "expense.deleted"
	MetricBudgetAlert         = "budget.alert"
	MetricBudgetUpserted      = "budget.upserted"
	MetricBudgetAggregation   = "budget.aggregation"
	MetricAlertPublished      = "alert.published"
	MetricAuthenticationEvent = "authentication_event"
	MetricCircuitBreakerState = "circuit_breaker.state"
	MetricExpensesSeeded      = "expenses.seeded"
)

type PrometheusMetrics struct {
	expensesCreated           prometheus.Counter
	expensesDeleted           prometheus.Counter
	budgetAlerts              *prometheus.CounterVec
	budgetUpserts             prometheus.Counter
	aggregationDuration       prometheus.Histogram
	alertsPublished           *prometheus.CounterVec
	circuitBreakerState       *prometheus.GaugeVec
	authenticationEventsTotal *prometheus.CounterVec
	expensesSeeded            prometheus.Counter
}

// NewPrometheusMetrics registers the business collectors on reg. Passing
// prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		expensesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "expenses_created_total",
				Help:      "Total number of expenses recorded",
			},
		),
		expensesDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "expenses_deleted_total",
				Help:      "Total number of expenses deleted",
			},
		),
		budgetAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "budget_alerts_total",
				Help:      "Total number of budget alerts raised after an expense was recorded",
			},
			[]string{"type"},
		),
		budgetUpserts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "budget_upserts_total",
				Help:      "Total number of budgets created or replaced",
			},
		),
		aggregationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Time spent computing spending for a list of budgets",
				Buckets:   prometheus.DefBuckets,
			},
		),
		alertsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "alerts_published_total",
				Help:      "Budget alerts handed to the message broker by outcome",
			},
			[]string{"status"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "authentication_events_total",
				Help:      "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		expensesSeeded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "expenses_seeded_total",
				Help:      "Total number of demo expenses generated",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricExpenseCreated:
		m.expensesCreated.Inc()
	case MetricExpenseDeleted:
		m.expensesDeleted.Inc()
	case MetricBudgetAlert:
		if alertType := tags["type"]; alertType != "" {
			m.budgetAlerts.WithLabelValues(alertType).Inc()
		}
	case MetricBudgetUpserted:
		m.budgetUpserts.Inc()
	case MetricAlertPublished:
		if status := tags["status"]; status != "" {
			m.alertsPublished.WithLabelValues(status).Inc()
		}
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricBudgetAggregation:
		m.aggregationDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricCircuitBreakerState:
		if service := tags["service"]; service != "" {
			m.circuitBreakerState.WithLabelValues(service).Set(value)
		}
	case MetricExpensesSeeded:
		m.expensesSeeded.Add(value)
	}
}
