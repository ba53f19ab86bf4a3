package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinNameLength = 2
	MaxNameLength = 100
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrNameTooShort  = errors.New("name must be at least 2 characters")
	ErrNameTooLong   = errors.New("name must be at most 100 characters")

	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// User owns categories, expenses and budgets. Email is stored normalized and unique.
type User struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name                string         `gorm:"type:varchar(100);not null" json:"name"`
	Email               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"type:varchar(255);not null" json:"-"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedAt            *time.Time     `gorm:"index" json:"lockedAt,omitempty"`
	LastLoginAt         *time.Time     `gorm:"index" json:"lastLoginAt,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) TableName() string {
	return "users"
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)

	return u.Validate()
}

// BeforeUpdate validates full saves. Column updates through a map skip validation because
// the model carries no field values.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if _, partial := tx.Statement.Dest.(map[string]interface{}); partial {
		return nil
	}
	return u.Validate()
}

func (u *User) Validate() error {
	switch {
	case u.Email == "":
		return ErrEmailRequired
	case !emailRegex.MatchString(u.Email):
		return ErrInvalidEmail
	}

	runes := utf8.RuneCountInString(strings.TrimSpace(u.Name))
	switch {
	case runes < MinNameLength:
		return ErrNameTooShort
	case runes > MaxNameLength:
		return ErrNameTooLong
	}
	return nil
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

// IncrementFailedAttempts records a failed login and locks the user once maxAttempts is
// reached. A non-positive maxAttempts disables locking.
func (u *User) IncrementFailedAttempts(maxAttempts int) {
	u.FailedLoginAttempts++
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts && u.LockedAt == nil {
		now := time.Now()
		u.LockedAt = &now
	}
}

func (u *User) ResetFailedAttempts() {
	u.FailedLoginAttempts = 0
	u.LockedAt = nil
}
