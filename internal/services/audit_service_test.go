package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories/repository_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// AuditServiceTestSuite is the test suite for AuditService
type AuditServiceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *repository_mocks.MockAuditLogRepositoryInterface
	service  *AuditService
	ctx      context.Context
	now      time.Time
}

func (s *AuditServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = repository_mocks.NewMockAuditLogRepositoryInterface(s.ctrl)
	s.service = NewAuditService(s.mockRepo, slog.Default()).(*AuditService)
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
}

func (s *AuditServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}

func (s *AuditServiceTestSuite) TestRecord_DropsUnknownActions() {
	s.NotPanics(func() {
		s.service.Record(s.ctx, models.AuditEntry{Action: "wire_transfer", Resource: models.AuditResourceUser})
	})
}

func (s *AuditServiceTestSuite) TestRecord_TakesClientInfoFromContext() {
	userID := uuid.New()
	ctx := WithClientInfo(context.Background(), "10.0.0.7", "curl/8.0")

	s.mockRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, log *models.AuditLog) error {
		s.Equal(&userID, log.UserID)
		s.Equal(models.AuditActionBudgetSet, log.Action)
		s.Equal(models.AuditResourceBudget, log.Resource)
		s.Equal("10.0.0.7", log.IPAddress)
		s.Equal("curl/8.0", log.UserAgent)
		s.Equal("500.00", log.Metadata["limit"])
		return nil
	})

	s.service.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditActionBudgetSet,
		Resource:   models.AuditResourceBudget,
		ResourceID: uuid.NewString(),
		Metadata:   models.AuditMetadata{"limit": "500.00"},
	})
}

func (s *AuditServiceTestSuite) TestRecord_SwallowsRepositoryErrors() {
	s.mockRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(errors.New("connection reset"))

	s.NotPanics(func() {
		s.service.Record(s.ctx, models.AuditEntry{
			Action:   models.AuditActionFailedLogin,
			Resource: models.AuditResourceUser,
		})
	})
}

func (s *AuditServiceTestSuite) TestGetUserActivity() {
	userID := uuid.New()
	logs := []*models.AuditLog{{ID: uuid.New(), Action: models.AuditActionLogin}}

	s.Run("rejects nil user", func() {
		_, _, err := s.service.GetUserActivity(s.ctx, uuid.Nil, 0, 10)
		s.ErrorIs(err, ErrInvalidUserID)
	})

	s.Run("applies default limit", func() {
		s.mockRepo.EXPECT().ListByUser(s.ctx, userID, 0, DefaultActivityLimit).Return(logs, int64(1), nil)

		got, total, err := s.service.GetUserActivity(s.ctx, userID, -5, 0)

		s.Require().NoError(err)
		s.Equal(int64(1), total)
		s.Len(got, 1)
	})

	s.Run("caps the limit", func() {
		s.mockRepo.EXPECT().ListByUser(s.ctx, userID, 40, MaxActivityLimit).Return(logs, int64(41), nil)

		_, total, err := s.service.GetUserActivity(s.ctx, userID, 40, 1000)

		s.Require().NoError(err)
		s.Equal(int64(41), total)
	})

	s.Run("wraps repository errors", func() {
		s.mockRepo.EXPECT().ListByUser(s.ctx, userID, 0, 5).Return(nil, int64(0), errors.New("timeout"))

		_, _, err := s.service.GetUserActivity(s.ctx, userID, 0, 5)

		s.ErrorContains(err, "timeout")
	})
}

func (s *AuditServiceTestSuite) TestPurge() {
	s.Run("non-positive retention keeps everything", func() {
		deleted, err := s.service.Purge(s.ctx, 0)
		s.NoError(err)
		s.Zero(deleted)
	})

	s.Run("deletes entries past retention", func() {
		s.mockRepo.EXPECT().DeleteBefore(s.ctx, s.now.Add(-90*24*time.Hour)).Return(int64(12), nil)

		deleted, err := s.service.Purge(s.ctx, 90*24*time.Hour)

		s.NoError(err)
		s.Equal(int64(12), deleted)
	})

	s.Run("wraps repository errors", func() {
		s.mockRepo.EXPECT().DeleteBefore(s.ctx, s.now.Add(-time.Hour)).Return(int64(0), errors.New("locked"))

		_, err := s.service.Purge(s.ctx, time.Hour)

		s.Error(err)
	})
}

func (s *AuditServiceTestSuite) TestClientInfoFrom_EmptyContext() {
	s.Equal(ClientInfo{}, ClientInfoFrom(context.Background()))
}
