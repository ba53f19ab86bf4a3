package errors

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CodesTestSuite struct {
	suite.Suite
}

func TestCodesTestSuite(t *testing.T) {
	suite.Run(t, new(CodesTestSuite))
}

var allCodes = []ErrorCode{
	AuthInvalidCredentials, AuthMissingToken, AuthExpiredToken, AuthInvalidTokenFormat,
	AuthInsufficientPermission, AuthAccountLocked, AuthInvalidRefreshToken,
	ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat, ValidationOutOfRange,
	ValidationInvalidEmail, ValidationInvalidAmount, ValidationInvalidDate, ValidationWeakPassword,
	UserNotFound, UserAlreadyExists,
	CategoryNotFound, CategoryInvalidID,
	ExpenseNotFound, ExpenseInvalidID,
	BudgetNotFound, BudgetAlreadyExists, BudgetInvalidID,
	SystemInternalError, SystemDatabaseError, SystemServiceUnavailable, SystemConfigurationError,
	SystemUnexpectedError, SystemRateLimitExceeded, SystemRouteNotFound,
}

var codeFormat = regexp.MustCompile(`^(AUTH|VALIDATION|USER|CATEGORY|EXPENSE|BUDGET|SYSTEM)_\d{3}$`)

func (s *CodesTestSuite) TestEveryCodeIsRegistered() {
	seen := make(map[ErrorCode]bool, len(allCodes))
	for _, code := range allCodes {
		s.Falsef(seen[code], "duplicate code %s", code)
		seen[code] = true

		s.Regexp(codeFormat, string(code))
		s.True(IsValidErrorCode(code))
		s.NotEqual("An error occurred", GetErrorMessage(code), "code %s has no message", code)
	}
}

func (s *CodesTestSuite) TestGetErrorMessage() {
	s.Equal("Invalid month or year", GetErrorMessage(ValidationInvalidDate))
	s.Equal("A budget already exists for this category and month", GetErrorMessage(BudgetAlreadyExists))
	s.Equal("An error occurred", GetErrorMessage("BUDGET_999"))
	s.False(IsValidErrorCode(""))
}

func (s *CodesTestSuite) TestGetHTTPStatus() {
	testCases := []struct {
		code   ErrorCode
		status int
	}{
		{ValidationInvalidAmount, http.StatusBadRequest},
		{BudgetInvalidID, http.StatusBadRequest},
		{AuthExpiredToken, http.StatusUnauthorized},
		{AuthInvalidRefreshToken, http.StatusUnauthorized},
		{AuthAccountLocked, http.StatusForbidden},
		{ExpenseNotFound, http.StatusNotFound},
		{SystemRouteNotFound, http.StatusNotFound},
		{BudgetAlreadyExists, http.StatusConflict},
		{UserAlreadyExists, http.StatusConflict},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{SystemServiceUnavailable, http.StatusServiceUnavailable},
		{SystemDatabaseError, http.StatusInternalServerError},
		{"NOT_A_CODE", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.status, GetHTTPStatus(tc.code))
		})
	}
}

func (s *CodesTestSuite) TestEveryClientCodeIsMapped() {
	for _, code := range allCodes {
		if _, ok := statusByCode[code]; ok {
			continue
		}
		s.Regexpf(`^SYSTEM_`, string(code), "%s falls back to 500", code)
	}
}
