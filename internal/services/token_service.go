package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	bearerScheme = "Bearer"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token is expired")
	ErrInvalidIssuer     = errors.New("invalid issuer")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// TokenService signs and verifies the RS256 session tokens. Access tokens carry the
// user's email and name for display; refresh tokens carry only the user ID.
type TokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenService(jwtConfig *config.JWTConfig) TokenServiceInterface {
	return newTokenService(jwtConfig, time.Now)
}

func newTokenService(jwtConfig *config.JWTConfig, now func() time.Time) *TokenService {
	return &TokenService{cfg: *jwtConfig, now: now}
}

func (ts *TokenService) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("user cannot be nil")
	}

	return ts.sign(models.CustomClaims{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		TokenType: TokenTypeAccess,
	}, ts.cfg.AccessTokenDuration)
}

func (ts *TokenService) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	if userID == uuid.Nil {
		return "", time.Time{}, errors.New("user ID cannot be nil")
	}

	return ts.sign(models.CustomClaims{
		UserID:    userID.String(),
		TokenType: TokenTypeRefresh,
	}, ts.cfg.RefreshTokenDuration)
}

// sign fills the registered claims and signs. Every token gets a fresh JTI so a single
// session can be revoked without touching the others.
func (ts *TokenService) sign(claims models.CustomClaims, ttl time.Duration) (string, time.Time, error) {
	issuedAt := ts.now()
	expiresAt := issuedAt.Add(ttl)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    ts.cfg.Issuer,
		Subject:   claims.UserID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.cfg.PrivateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", claims.TokenType, err)
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) ValidateAccessToken(tokenString string) (*models.CustomClaims, error) {
	return ts.verify(tokenString, TokenTypeAccess)
}

func (ts *TokenService) ValidateRefreshToken(tokenString string) (*models.CustomClaims, error) {
	return ts.verify(tokenString, TokenTypeRefresh)
}

func (ts *TokenService) verify(tokenString, kind string) (*models.CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(ts.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)

	claims := &models.CustomClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return ts.cfg.PublicKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !claims.Is(kind) {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// ExtractTokenFromHeader returns the credentials of a "Bearer <token>" header. The scheme
// is matched case-insensitively.
func (ts *TokenService) ExtractTokenFromHeader(authHeader string) (string, error) {
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrInvalidAuthHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

// GetJTI reads the token ID without verifying the signature. Callers use it on tokens
// that already passed RequireAuth.
func (ts *TokenService) GetJTI(tokenString string) (string, error) {
	claims, err := unverifiedClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

func (ts *TokenService) GetTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := unverifiedClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}

func unverifiedClaims(tokenString string) (*models.CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	claims := &models.CustomClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
