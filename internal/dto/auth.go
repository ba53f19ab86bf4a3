package dto

import (
	"time"

	"budget-tracker/internal/models"
)

// Auth Request DTOs

// RegisterRequest contains user registration data. The password policy is
// enforced by the password service so it can follow configuration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest contains refresh token for renewal
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke. Without it every
// refresh token of the user is revoked.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Auth Response DTOs

// TokenResponse contains authentication tokens
type TokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	TokenType    string        `json:"tokenType"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	User         *UserResponse `json:"user,omitempty"`
}

// UserResponse represents the authenticated user's profile
type UserResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CurrentUserResponse wraps the profile returned by GET /auth/me
type CurrentUserResponse struct {
	User *UserResponse `json:"user"`
}

// ActivityResponse is one entry of the user's audit trail
type ActivityResponse struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resourceId,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// ActivityListResponse is a page of the user's audit trail
type ActivityListResponse struct {
	Activity []ActivityResponse `json:"activity"`
	Total    int64              `json:"total"`
	Offset   int                `json:"offset"`
	Limit    int                `json:"limit"`
}

func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:          user.ID.String(),
		Name:        user.Name,
		Email:       user.Email,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func NewActivityResponse(log *models.AuditLog) ActivityResponse {
	return ActivityResponse{
		ID:         log.ID.String(),
		Action:     log.Action,
		Resource:   log.Resource,
		ResourceID: log.ResourceID,
		IPAddress:  log.IPAddress,
		Metadata:   log.Metadata,
		CreatedAt:  log.CreatedAt,
	}
}
