package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget-tracker/internal/amqp"
	"budget-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type fakePublisher struct {
	err       error
	published []amqp.BudgetAlertMessage
	deadline  bool
}

func (p *fakePublisher) PublishBudgetAlert(ctx context.Context, msg amqp.BudgetAlertMessage) error {
	_, p.deadline = ctx.Deadline()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type AlertNotifierTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	activity  *service_mocks.MockActivityLoggerInterface
	metrics   *service_mocks.MockMetricsRecorderInterface
	publisher *fakePublisher
	breaker   CircuitBreakerInterface
	notifier  AlertNotifierInterface
	msg       amqp.BudgetAlertMessage
}

func (s *AlertNotifierTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.activity = service_mocks.NewMockActivityLoggerInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.publisher = &fakePublisher{}
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour, ProbeSuccesses: 1})
	s.notifier = NewAlertNotifier(s.publisher, s.breaker, s.activity, s.metrics, time.Second)
	s.msg = amqp.BudgetAlertMessage{
		UserID:     uuid.New(),
		ExpenseID:  uuid.New(),
		CategoryID: uuid.New(),
		Type:       "warning",
		Message:    "⚠️ You've used 80% of your budget for Food",
		Spent:      decimal.NewFromInt(800),
		Limit:      decimal.NewFromInt(1000),
		Percentage: 80,
		Month:      3,
		Year:       2024,
		Timestamp:  time.Now().UTC(),
	}
}

func (s *AlertNotifierTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAlertNotifierSuite(t *testing.T) {
	suite.Run(t, new(AlertNotifierTestSuite))
}

func (s *AlertNotifierTestSuite) TestPublishes() {
	s.metrics.EXPECT().IncrementCounter(MetricAlertPublished, map[string]string{"status": "published"})

	s.notifier.Notify(context.Background(), s.msg)

	s.Require().Len(s.publisher.published, 1)
	s.Equal(s.msg.ExpenseID, s.publisher.published[0].ExpenseID)
	s.True(s.publisher.deadline)
}

func (s *AlertNotifierTestSuite) TestPublishSurvivesCancelledRequest() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.metrics.EXPECT().IncrementCounter(MetricAlertPublished, map[string]string{"status": "published"})

	s.notifier.Notify(ctx, s.msg)

	s.Len(s.publisher.published, 1)
}

func (s *AlertNotifierTestSuite) TestFailuresOpenTheBreaker() {
	s.publisher.err = errors.New("connection refused")

	s.metrics.EXPECT().IncrementCounter(MetricAlertPublished, map[string]string{"status": "failed"}).Times(2)
	s.activity.EXPECT().LogAlertPublishFailed(gomock.Any(), s.msg.UserID, s.msg.CategoryID, "connection refused").Times(2)
	s.activity.EXPECT().LogCircuitBreakerStateChange(gomock.Any(), "amqp", "closed", "open")
	s.metrics.EXPECT().RecordGauge(MetricCircuitBreakerState, float64(StateOpen), map[string]string{"service": "amqp"})

	s.notifier.Notify(context.Background(), s.msg)
	s.notifier.Notify(context.Background(), s.msg)

	s.True(s.breaker.IsOpen())
}

func (s *AlertNotifierTestSuite) TestOpenBreakerSkipsPublisher() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()

	s.metrics.EXPECT().IncrementCounter(MetricAlertPublished, map[string]string{"status": "skipped"})
	s.activity.EXPECT().LogAlertPublishFailed(gomock.Any(), s.msg.UserID, s.msg.CategoryID, ErrCircuitBreakerOpen.Error())

	s.notifier.Notify(context.Background(), s.msg)

	s.Empty(s.publisher.published)
}

func (s *AlertNotifierTestSuite) TestNoopPublisherAlwaysSucceeds() {
	notifier := NewAlertNotifier(amqp.NewNoopPublisher(), s.breaker, s.activity, s.metrics, 0)

	s.metrics.EXPECT().IncrementCounter(MetricAlertPublished, map[string]string{"status": "published"})

	notifier.Notify(context.Background(), s.msg)
}
