package services

import (
	"strings"
	"testing"

	"budget-tracker/internal/config"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// PasswordServiceTestSuite defines the test suite for PasswordService
type PasswordServiceTestSuite struct {
	suite.Suite
	service PasswordServiceInterface
}

// SetupTest runs before each test
func (s *PasswordServiceTestSuite) SetupTest() {
	s.service = NewPasswordService(&config.SecurityConfig{
		BCryptCost:        bcrypt.MinCost,
		PasswordMinLength: 6,
	})
}

// TestPasswordServiceSuite runs the test suite
func TestPasswordServiceSuite(t *testing.T) {
	suite.Run(t, new(PasswordServiceTestSuite))
}

func (s *PasswordServiceTestSuite) strictService() PasswordServiceInterface {
	return NewPasswordService(&config.SecurityConfig{
		BCryptCost:          bcrypt.MinCost,
		PasswordMinLength:   12,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
	})
}

func (s *PasswordServiceTestSuite) TestValidatePassword_DefaultPolicy() {
	s.NoError(s.service.ValidatePassword("secret"))
	s.NoError(s.service.ValidatePassword("lowercase only is fine"))
}

func (s *PasswordServiceTestSuite) TestValidatePassword_TooShort() {
	err := s.service.ValidatePassword("short")
	s.ErrorIs(err, ErrPasswordTooShort)
	s.Contains(err.Error(), "at least 6 characters")
}

func (s *PasswordServiceTestSuite) TestValidatePassword_Empty() {
	s.ErrorIs(s.service.ValidatePassword(""), ErrPasswordEmpty)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_TooLong() {
	s.ErrorIs(s.service.ValidatePassword(strings.Repeat("a", MaxPasswordLength+1)), ErrPasswordTooLong)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_MinimumLengthNeverBelowSix() {
	svc := NewPasswordService(&config.SecurityConfig{BCryptCost: bcrypt.MinCost, PasswordMinLength: 2})
	s.ErrorIs(svc.ValidatePassword("abc"), ErrPasswordTooShort)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_StrictPolicy() {
	strict := s.strictService()

	testCases := []struct {
		name     string
		password string
		err      error
	}{
		{name: "valid", password: "SecurePass123!@#"},
		{name: "too short", password: "Short1!", err: ErrPasswordTooShort},
		{name: "missing uppercase", password: "securepass123!@#", err: ErrPasswordNoUppercase},
		{name: "missing lowercase", password: "SECUREPASS123!@#", err: ErrPasswordNoLowercase},
		{name: "missing number", password: "SecurePass!@#x", err: ErrPasswordNoNumber},
		{name: "missing special", password: "SecurePass1234", err: ErrPasswordNoSpecial},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := strict.ValidatePassword(tc.password)
			if tc.err == nil {
				s.NoError(err)
			} else {
				s.ErrorIs(err, tc.err)
			}
		})
	}
}

func (s *PasswordServiceTestSuite) TestHashPassword_ValidPassword() {
	hash, err := s.service.HashPassword("password123")
	s.NoError(err)
	s.NotEmpty(hash)
	s.NotEqual("password123", hash)
	s.True(strings.HasPrefix(hash, "$2a$"))
}

func (s *PasswordServiceTestSuite) TestHashPassword_InvalidPassword() {
	hash, err := s.service.HashPassword("weak")
	s.Error(err)
	s.Empty(hash)
	s.Contains(err.Error(), "password validation failed")
}

func (s *PasswordServiceTestSuite) TestComparePassword() {
	hash, err := s.service.HashPassword("Correct-Horse")
	s.Require().NoError(err)

	s.True(s.service.ComparePassword("Correct-Horse", hash))
	s.False(s.service.ComparePassword("correct-horse", hash))
	s.False(s.service.ComparePassword("", hash))
	s.False(s.service.ComparePassword("Correct-Horse", "not-a-hash"))
	s.False(s.service.ComparePassword("Correct-Horse", ""))
}

func (s *PasswordServiceTestSuite) TestHashUniqueness() {
	hash1, err := s.service.HashPassword("same-password")
	s.Require().NoError(err)
	hash2, err := s.service.HashPassword("same-password")
	s.Require().NoError(err)

	s.NotEqual(hash1, hash2)
	s.True(s.service.ComparePassword("same-password", hash1))
	s.True(s.service.ComparePassword("same-password", hash2))
}

func (s *PasswordServiceTestSuite) TestInvalidCostFallsBackToDefault() {
	svc := NewPasswordService(&config.SecurityConfig{BCryptCost: 99, PasswordMinLength: 6}).(*PasswordService)
	s.Equal(bcrypt.DefaultCost, svc.cost)
}
