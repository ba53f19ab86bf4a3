package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"budget-tracker/internal/database"
	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestRefreshTokenRepository(t *testing.T) {
	suite.Run(t, new(RefreshTokenRepositorySuite))
}

type RefreshTokenRepositorySuite struct {
	suite.Suite
	db     *database.DB
	repo   RefreshTokenRepositoryInterface
	ctx    context.Context
	now    time.Time
	userID uuid.UUID
}

func (s *RefreshTokenRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	s.repo = &refreshTokenRepository{db: s.db.DB, now: func() time.Time { return s.now }}
	s.ctx = context.Background()
	s.userID = uuid.New()
}

func (s *RefreshTokenRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *RefreshTokenRepositorySuite) session(userID uuid.UUID, hash string, ttl time.Duration) *models.RefreshToken {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: hash,
		UserAgent: "Mozilla/5.0",
		IPAddress: "10.0.0.1",
		ExpiresAt: s.now.Add(ttl),
	}
	s.Require().NoError(s.repo.Create(s.ctx, token))
	return token
}

func (s *RefreshTokenRepositorySuite) TestCreateAndLookup() {
	created := s.session(s.userID, "hash-a", time.Hour)
	s.NotEqual(uuid.Nil, created.ID)

	found, err := s.repo.GetByTokenHash(s.ctx, "hash-a")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal("Mozilla/5.0", found.UserAgent)
	s.Equal("10.0.0.1", found.IPAddress)
	s.True(found.ActiveAt(s.now))

	_, err = s.repo.GetByTokenHash(s.ctx, "missing")
	s.ErrorIs(err, ErrRefreshTokenNotFound)
}

func (s *RefreshTokenRepositorySuite) TestCreate_RejectsDuplicateHash() {
	s.session(s.userID, "hash-a", time.Hour)

	err := s.repo.Create(s.ctx, &models.RefreshToken{UserID: s.userID, TokenHash: "hash-a", ExpiresAt: s.now.Add(time.Hour)})
	s.Error(err)
}

func (s *RefreshTokenRepositorySuite) TestRotate() {
	old := s.session(s.userID, "hash-old", time.Hour)
	next := &models.RefreshToken{UserID: s.userID, TokenHash: "hash-new", ExpiresAt: s.now.Add(2 * time.Hour)}

	s.Require().NoError(s.repo.Rotate(s.ctx, old.ID, next))

	revoked, err := s.repo.GetByTokenHash(s.ctx, "hash-old")
	s.Require().NoError(err)
	s.Require().NotNil(revoked.RevokedAt)
	s.True(s.now.Equal(revoked.RevokedAt.UTC()))

	fresh, err := s.repo.GetByTokenHash(s.ctx, "hash-new")
	s.Require().NoError(err)
	s.True(fresh.ActiveAt(s.now))
}

func (s *RefreshTokenRepositorySuite) TestRotate_ReplayedTokenCreatesNothing() {
	old := s.session(s.userID, "hash-old", time.Hour)
	s.Require().NoError(s.repo.Rotate(s.ctx, old.ID, &models.RefreshToken{UserID: s.userID, TokenHash: "hash-1", ExpiresAt: s.now.Add(time.Hour)}))

	err := s.repo.Rotate(s.ctx, old.ID, &models.RefreshToken{UserID: s.userID, TokenHash: "hash-2", ExpiresAt: s.now.Add(time.Hour)})

	s.ErrorIs(err, ErrRefreshTokenNotFound)
	_, err = s.repo.GetByTokenHash(s.ctx, "hash-2")
	s.ErrorIs(err, ErrRefreshTokenNotFound)
}

func (s *RefreshTokenRepositorySuite) TestRotate_FailedInsertKeepsOldSession() {
	old := s.session(s.userID, "hash-old", time.Hour)
	s.session(s.userID, "hash-taken", time.Hour)

	err := s.repo.Rotate(s.ctx, old.ID, &models.RefreshToken{UserID: s.userID, TokenHash: "hash-taken", ExpiresAt: s.now.Add(time.Hour)})
	s.Error(err)

	still, err := s.repo.GetByTokenHash(s.ctx, "hash-old")
	s.Require().NoError(err)
	s.Nil(still.RevokedAt)
}

func (s *RefreshTokenRepositorySuite) TestRevoke() {
	token := s.session(s.userID, "hash-a", time.Hour)

	s.NoError(s.repo.Revoke(s.ctx, token.ID))
	s.ErrorIs(s.repo.Revoke(s.ctx, token.ID), ErrRefreshTokenNotFound)
	s.ErrorIs(s.repo.Revoke(s.ctx, uuid.New()), ErrRefreshTokenNotFound)
}

func (s *RefreshTokenRepositorySuite) TestRevokeAllForUser() {
	for i := 0; i < 3; i++ {
		s.session(s.userID, fmt.Sprintf("mine-%d", i), time.Hour)
	}
	other := s.session(uuid.New(), "theirs", time.Hour)

	revoked, err := s.repo.RevokeAllForUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(3), revoked)

	again, err := s.repo.RevokeAllForUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Zero(again)

	untouched, err := s.repo.GetByTokenHash(s.ctx, other.TokenHash)
	s.Require().NoError(err)
	s.Nil(untouched.RevokedAt)
}

func (s *RefreshTokenRepositorySuite) TestDeleteExpired() {
	s.session(s.userID, "expired", -time.Hour)
	s.session(s.userID, "live", time.Hour)

	deleted, err := s.repo.DeleteExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.repo.GetByTokenHash(s.ctx, "expired")
	s.ErrorIs(err, ErrRefreshTokenNotFound)
	_, err = s.repo.GetByTokenHash(s.ctx, "live")
	s.NoError(err)
}
