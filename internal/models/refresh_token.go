package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUserAgentLength = 255

// RefreshToken is one signed-in session. Only the SHA-256 of the token is kept.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	TokenHash string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	UserAgent string     `gorm:"type:varchar(255)" json:"userAgent,omitempty"`
	IPAddress string     `gorm:"type:varchar(45)" json:"ipAddress,omitempty"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expiresAt"`
	RevokedAt *time.Time `gorm:"index" json:"revokedAt,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ActiveAt reports whether the session can still mint access tokens at now.
func (rt *RefreshToken) ActiveAt(now time.Time) bool {
	return rt.RevokedAt == nil && now.Before(rt.ExpiresAt)
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if len(rt.UserAgent) > maxUserAgentLength {
		rt.UserAgent = rt.UserAgent[:maxUserAgentLength]
	}
	return nil
}
