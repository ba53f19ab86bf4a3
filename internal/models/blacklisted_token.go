package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlacklistedToken marks an access token JTI as revoked until the token would have expired anyway.
type BlacklistedToken struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	JTI           string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"jti"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expiresAt"`
	BlacklistedAt time.Time `gorm:"not null" json:"blacklistedAt"`
}

func (BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}

// Purgeable reports whether the entry no longer guards a usable token.
func (bt *BlacklistedToken) Purgeable(now time.Time) bool {
	return !now.Before(bt.ExpiresAt)
}

func (bt *BlacklistedToken) BeforeCreate(tx *gorm.DB) error {
	if bt.ID == uuid.Nil {
		bt.ID = uuid.New()
	}
	if bt.BlacklistedAt.IsZero() {
		bt.BlacklistedAt = time.Now()
	}
	return nil
}
