package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget-tracker/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestPanicRecoveryTestSuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.HTTPErrorHandler = CustomHTTPErrorHandler
	s.echo.Use(RequestID(), PanicRecovery())
}

func (s *PanicRecoveryTestSuite) serve(path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *PanicRecoveryTestSuite) TestPanicBecomesSystemError() {
	s.echo.GET("/boom", func(echo.Context) error {
		panic("nil map write in summary")
	})

	rec := s.serve("/boom", http.Header{TraceIDHeader: {"trace-123"}})

	s.Equal(http.StatusInternalServerError, rec.Code)

	var body errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("SYSTEM_001", body.Error.Code)
	s.Equal("trace-123", body.Error.TraceID)
	s.NotContains(rec.Body.String(), "nil map write")
	s.Equal("trace-123", rec.Header().Get(TraceIDHeader))
}

func (s *PanicRecoveryTestSuite) TestPanicWithErrorValue() {
	s.echo.GET("/boom", func(echo.Context) error {
		panic(fmt.Errorf("decimal: division by zero"))
	})

	rec := s.serve("/boom", nil)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_001")
	s.NotContains(rec.Body.String(), "division")
}

func (s *PanicRecoveryTestSuite) TestNormalRequestUntouched() {
	s.echo.GET("/ok", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rec := s.serve("/ok", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *PanicRecoveryTestSuite) TestHandlerErrorPassesThrough() {
	s.echo.GET("/missing", func(echo.Context) error {
		return errors.New(errors.ExpenseNotFound)
	})

	rec := s.serve("/missing", nil)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "EXPENSE_001")
}
