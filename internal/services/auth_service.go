package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"

	"github.com/google/uuid"
)

const (
	tokenTypeBearer = "Bearer"

	// expiredTokenBlacklistTTL bounds how long the JTI of an access token that failed
	// validation at logout stays blacklisted.
	expiredTokenBlacklistTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrWeakPassword        = errors.New("password does not meet requirements")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	auditService         AuditServiceInterface
	metrics              MetricsRecorderInterface
	maxFailedAttempts    int
	logger               *slog.Logger
	now                  func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	auditService AuditServiceInterface,
	metrics MetricsRecorderInterface,
	maxFailedAttempts int,
	logger *slog.Logger,
) AuthServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:             userRepo,
		refreshTokenRepo:     refreshTokenRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		auditService:         auditService,
		metrics:              metrics,
		maxFailedAttempts:    maxFailedAttempts,
		logger:               logger,
		now:                  time.Now,
	}
}

// Register creates a new user and signs them in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := models.NormalizeEmail(req.Email)

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if existingUser != nil {
		s.auditFailedRegistration(ctx, email, "email_already_exists")
		return nil, ErrUserAlreadyExists
	}

	if err := s.passwordService.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.auditSuccess(ctx, user.ID, models.AuditActionRegister)
	s.recordAuthEvent("register")

	return tokens, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := models.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.auditFailedLogin(ctx, email, "user_not_found")
			s.recordAuthEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.auditFailedLogin(ctx, email, "account_locked")
		s.recordAuthEvent("login_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		user.IncrementFailedAttempts(s.maxFailedAttempts)
		if err := s.userRepo.RecordFailedLogin(ctx, user); err != nil {
			// Never reveal user existence via error messages
			s.logger.ErrorContext(ctx, "failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}

		if user.IsLocked() {
			s.auditSuccess(ctx, user.ID, models.AuditActionAccountLocked)
		}

		s.auditFailedLogin(ctx, email, "invalid_password")
		s.recordAuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.userRepo.RecordSuccessfulLogin(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record login",
			"error", err,
			"user_id", user.ID)
	} else {
		user.ResetFailedAttempts()
		user.LastLoginAt = &now
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.auditSuccess(ctx, user.ID, models.AuditActionLogin)
	s.recordAuthEvent("login")

	return tokens, nil
}

// RefreshTokens rotates a refresh token into a new token pair
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.auditFailedTokenRefresh(ctx, "", "invalid_token")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, fmt.Errorf("failed to load refresh token: %w", err)
		}
		s.auditFailedTokenRefresh(ctx, claims.UserID, "token_not_found")
		return nil, ErrInvalidRefreshToken
	}

	if !storedToken.ActiveAt(s.now()) || storedToken.UserID != userID {
		s.auditFailedTokenRefresh(ctx, claims.UserID, "token_expired_or_revoked")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	tokens, next, err := s.newSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Rotate(ctx, storedToken.ID, next); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			// A concurrent refresh with the same token won the rotation.
			s.auditFailedTokenRefresh(ctx, claims.UserID, "token_already_rotated")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.auditSuccess(ctx, user.ID, models.AuditActionTokenRefresh)
	s.recordAuthEvent("token_refresh")

	return tokens, nil
}

// Logout blacklists the access token and revokes refresh tokens. When a refresh
// token is supplied only that session ends; otherwise every session of the user does.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		// Blacklist even expired tokens to prevent reuse
		jti, _ := s.tokenService.GetJTI(accessToken)
		if jti != "" {
			if err := s.blacklistToken(ctx, jti, uuid.Nil, s.now().Add(expiredTokenBlacklistTTL)); err != nil {
				s.logger.ErrorContext(ctx, "failed to blacklist expired token",
					"error", err,
					"jti", jti)
			}
		}
		return nil
	}

	userID, _ := uuid.Parse(claims.UserID)

	expiry, err := s.tokenService.GetTokenExpiry(accessToken)
	if err != nil {
		expiry = s.now().Add(expiredTokenBlacklistTTL)
	}
	if err := s.blacklistToken(ctx, claims.ID, userID, expiry); err != nil {
		s.logger.ErrorContext(ctx, "failed to blacklist token",
			"error", err,
			"jti", claims.ID,
			"user_id", userID)
	}

	s.revokeSessions(ctx, userID, refreshToken)

	s.auditSuccess(ctx, userID, models.AuditActionLogout)
	s.recordAuthEvent("logout")

	return nil
}

// GetCurrentUser returns the authenticated user's profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) revokeSessions(ctx context.Context, userID uuid.UUID, refreshToken string) {
	if refreshToken != "" {
		stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, hashToken(refreshToken))
		if err == nil && stored.UserID == userID {
			if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
				s.logger.WarnContext(ctx, "failed to revoke refresh token",
					"error", err,
					"user_id", userID,
					"token_id", stored.ID)
			}
			return
		}
	}

	if _, err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke refresh tokens",
			"error", err,
			"user_id", userID)
	}
}

// newSession signs a token pair for user and builds the session row for the refresh token
// without persisting it.
func (s *AuthService) newSession(ctx context.Context, user *models.User) (*dto.TokenResponse, *models.RefreshToken, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	client := ClientInfoFrom(ctx)
	session := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		ExpiresAt: refreshExpiresAt,
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    expiresAt,
		User:         dto.NewUserResponse(user),
	}, session, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	tokens, session, err := s.newSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokens, nil
}

func (s *AuthService) blacklistToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	return s.blacklistedTokenRepo.Create(ctx, &models.BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
}

// hashToken returns the hex SHA-256 of a refresh token; only the hash is persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) recordAuthEvent(eventType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": eventType})
}

func (s *AuthService) auditSuccess(ctx context.Context, userID uuid.UUID, action string) {
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditResourceUser,
		ResourceID: userID.String(),
	})
}

func (s *AuthService) auditFailedRegistration(ctx context.Context, email, reason string) {
	s.auditService.Record(ctx, models.AuditEntry{
		Action:   models.AuditActionRegister,
		Resource: models.AuditResourceUser,
		Metadata: models.AuditMetadata{"email": email, "reason": reason},
	})
}

func (s *AuthService) auditFailedLogin(ctx context.Context, email, reason string) {
	s.auditService.Record(ctx, models.AuditEntry{
		Action:   models.AuditActionFailedLogin,
		Resource: models.AuditResourceUser,
		Metadata: models.AuditMetadata{"email": email, "reason": reason},
	})
}

func (s *AuthService) auditFailedTokenRefresh(ctx context.Context, userID, reason string) {
	entry := models.AuditEntry{
		Action:   models.AuditActionTokenRefresh,
		Resource: "token",
		Metadata: models.AuditMetadata{"reason": reason},
	}
	if id, err := uuid.Parse(userID); err == nil {
		entry.UserID = &id
	}
	s.auditService.Record(ctx, entry)
}
