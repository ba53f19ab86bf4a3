package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg).(*PrometheusMetrics)

	metrics.IncrementCounter(MetricExpenseCreated, nil)
	metrics.IncrementCounter(MetricExpenseCreated, nil)
	metrics.IncrementCounter(MetricExpenseDeleted, nil)
	metrics.IncrementCounter(MetricBudgetUpserted, nil)
	metrics.IncrementCounter(MetricBudgetAlert, map[string]string{"type": "warning"})
	metrics.IncrementCounter(MetricBudgetAlert, map[string]string{"type": "exceeded"})
	metrics.IncrementCounter(MetricBudgetAlert, map[string]string{"type": "exceeded"})
	metrics.IncrementCounter(MetricAlertPublished, map[string]string{"status": "failed"})
	metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": "login"})

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.expensesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.expensesDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.budgetUpserts))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.budgetAlerts.WithLabelValues("warning")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.budgetAlerts.WithLabelValues("exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.alertsPublished.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.authenticationEventsTotal.WithLabelValues("login")))
}

func TestPrometheusMetrics_MissingLabelIsIgnored(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg).(*PrometheusMetrics)

	metrics.IncrementCounter(MetricBudgetAlert, nil)
	metrics.IncrementCounter("unknown.metric", nil)

	assert.Equal(t, 0, testutil.CollectAndCount(metrics.budgetAlerts))
}

func TestPrometheusMetrics_GaugesAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg).(*PrometheusMetrics)

	metrics.RecordGauge(MetricCircuitBreakerState, float64(StateOpen), map[string]string{"service": "amqp"})
	metrics.RecordGauge(MetricExpensesSeeded, 20, nil)
	metrics.RecordProcessingTime(MetricBudgetAggregation, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.circuitBreakerState.WithLabelValues("amqp")))
	assert.Equal(t, 20.0, testutil.ToFloat64(metrics.expensesSeeded))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.aggregationDuration))
}

func TestPrometheusMetrics_RegistersUnderNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)
	metrics.IncrementCounter(MetricExpenseCreated, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["budget_tracker_expenses_created_total"])
}
