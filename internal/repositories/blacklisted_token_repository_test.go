package repositories

import (
	"context"
	"testing"
	"time"

	"budget-tracker/internal/database"
	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestBlacklistedTokenRepository(t *testing.T) {
	suite.Run(t, new(BlacklistedTokenRepositorySuite))
}

type BlacklistedTokenRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo BlacklistedTokenRepositoryInterface
	ctx  context.Context
	now  time.Time
}

func (s *BlacklistedTokenRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewBlacklistedTokenRepository(s.db.DB)
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func (s *BlacklistedTokenRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *BlacklistedTokenRepositorySuite) blacklist(jti string, expiresAt time.Time) {
	s.Require().NoError(s.repo.Create(s.ctx, &models.BlacklistedToken{JTI: jti, UserID: uuid.New(), ExpiresAt: expiresAt}))
}

func (s *BlacklistedTokenRepositorySuite) TestIsRevoked() {
	s.blacklist("jti-1", s.now.Add(time.Hour))

	revoked, err := s.repo.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.repo.IsRevoked(s.ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *BlacklistedTokenRepositorySuite) TestCreate_IsIdempotent() {
	s.blacklist("jti-1", s.now.Add(time.Hour))
	s.blacklist("jti-1", s.now.Add(2*time.Hour))

	var count int64
	s.Require().NoError(s.db.Model(&models.BlacklistedToken{}).Where("jti = ?", "jti-1").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *BlacklistedTokenRepositorySuite) TestCreate_RequiresJTI() {
	s.Error(s.repo.Create(s.ctx, &models.BlacklistedToken{ExpiresAt: s.now}))
	s.Error(s.repo.Create(s.ctx, nil))
}

func (s *BlacklistedTokenRepositorySuite) TestDeleteExpired() {
	s.blacklist("stale", s.now.Add(-time.Minute))
	s.blacklist("boundary", s.now)
	s.blacklist("live", s.now.Add(time.Minute))

	deleted, err := s.repo.DeleteExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(2), deleted)

	revoked, err := s.repo.IsRevoked(s.ctx, "live")
	s.Require().NoError(err)
	s.True(revoked)
}
