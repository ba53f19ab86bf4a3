package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "budget-tracker/internal/errors"
	"budget-tracker/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.HTTPErrorHandler = CustomHTTPErrorHandler
}

// handle runs the error handler with the given trace ID ("" leaves it unset) and
// decodes the envelope.
func (s *ErrorHandlerTestSuite) handle(err error, traceID string) (*httptest.ResponseRecorder, apperrors.ErrorResponse) {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/api/budgets", nil), rec)
	if traceID != "" {
		c.Set(TraceIDContextKey, traceID)
	}

	CustomHTTPErrorHandler(err, c)

	var body apperrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func (s *ErrorHandlerTestSuite) TestAppErrorKeepsCodeAndHidesCause() {
	cause := errors.New("record not found for user 42")
	err := fmt.Errorf("delete budget: %w", apperrors.Wrap(apperrors.BudgetNotFound, cause))

	rec, body := s.handle(err, "trace-1")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	s.Equal("BUDGET_001", body.Error.Code)
	s.Equal("Budget not found", body.Error.Message)
	s.Equal("trace-1", body.Error.TraceID)
	s.NotNil(body.Error.Details)
	s.NotContains(rec.Body.String(), "user 42")
}

func (s *ErrorHandlerTestSuite) TestPlainErrorIsInternal() {
	rec, body := s.handle(errors.New("pq: connection refused on 10.0.0.5"), "trace-2")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("SYSTEM_001", body.Error.Code)
	s.NotContains(rec.Body.String(), "10.0.0.5")
}

func (s *ErrorHandlerTestSuite) TestMissingTraceID() {
	_, body := s.handle(errors.New("boom"), "")

	s.Equal(unknownTraceID, body.Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPErrors() {
	testCases := []struct {
		status  int
		code    string
		message string
	}{
		{http.StatusBadRequest, "VALIDATION_001", "Bad Request"},
		{http.StatusUnauthorized, "AUTH_002", "Unauthorized"},
		{http.StatusForbidden, "AUTH_005", "Forbidden"},
		{http.StatusNotFound, "SYSTEM_007", "Not Found"},
		{http.StatusMethodNotAllowed, "VALIDATION_001", "Method Not Allowed"},
		{http.StatusRequestEntityTooLarge, "VALIDATION_001", "Request Entity Too Large"},
		{http.StatusTooManyRequests, "SYSTEM_006", "Too Many Requests"},
		{http.StatusServiceUnavailable, "SYSTEM_003", "Service Unavailable"},
		{999, "SYSTEM_005", "An unexpected error occurred"},
	}

	for _, tc := range testCases {
		s.Run(fmt.Sprint(tc.status), func() {
			rec, body := s.handle(echo.NewHTTPError(tc.status), "trace-3")

			s.Equal(tc.status, rec.Code)
			s.Equal(tc.code, body.Error.Code)
			s.Equal(tc.message, body.Error.Message)
		})
	}
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPErrorCustomMessage() {
	_, body := s.handle(echo.NewHTTPError(http.StatusNotFound, "Resource not found"), "trace-4")

	s.Equal("Resource not found", body.Error.Message)
}

func (s *ErrorHandlerTestSuite) TestRawValidationErrors() {
	payload := struct {
		Month int `json:"month" validate:"required,month"`
	}{Month: 13}
	err := validation.GetValidator().Struct(payload)
	s.Require().Error(err)

	rec, body := s.handle(err, "trace-5")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_001", body.Error.Code)
	s.Contains(body.Error.Details, "month: must be between 1 and 12")
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	s.Require().NoError(c.JSON(http.StatusOK, map[string]string{"status": "ok"}))

	CustomHTTPErrorHandler(errors.New("late failure"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}
