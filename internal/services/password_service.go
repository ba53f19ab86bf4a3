package services

import (
	"errors"
	"fmt"
	"regexp"

	"budget-tracker/internal/config"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultMinPasswordLength = 6
	MaxPasswordLength        = 72 // Bcrypt algorithm limitation
)

var (
	ErrPasswordEmpty       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrPasswordTooLong     = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber    = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial   = errors.New("password must contain at least one special character")

	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	numberRegex    = regexp.MustCompile(`[0-9]`)
	specialRegex   = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{}|;:,.<>?]`)
)

// PasswordService handles password hashing and validation
type PasswordService struct {
	cost                int
	minLength           int
	requireUppercase    bool
	requireLowercase    bool
	requireNumbers      bool
	requireSpecialChars bool
}

// NewPasswordService creates a password service from the security configuration
func NewPasswordService(cfg *config.SecurityConfig) PasswordServiceInterface {
	cost := cfg.BCryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	minLength := cfg.PasswordMinLength
	if minLength < DefaultMinPasswordLength {
		minLength = DefaultMinPasswordLength
	}

	return &PasswordService{
		cost:                cost,
		minLength:           minLength,
		requireUppercase:    cfg.RequireUppercase,
		requireLowercase:    cfg.RequireLowercase,
		requireNumbers:      cfg.RequireNumbers,
		requireSpecialChars: cfg.RequireSpecialChars,
	}
}

// ValidatePassword checks a password against the configured policy
func (ps *PasswordService) ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}

	if len(password) < ps.minLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, ps.minLength)
	}

	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	if ps.requireUppercase && !uppercaseRegex.MatchString(password) {
		return ErrPasswordNoUppercase
	}

	if ps.requireLowercase && !lowercaseRegex.MatchString(password) {
		return ErrPasswordNoLowercase
	}

	if ps.requireNumbers && !numberRegex.MatchString(password) {
		return ErrPasswordNoNumber
	}

	if ps.requireSpecialChars && !specialRegex.MatchString(password) {
		return ErrPasswordNoSpecial
	}

	return nil
}

// HashPassword validates and hashes a password using bcrypt
func (ps *PasswordService) HashPassword(password string) (string, error) {
	if err := ps.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword compares a plain password with a hashed password
func (ps *PasswordService) ComparePassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
