package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"budget-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

// run invokes next behind RequestID and returns the recorder.
func (s *RequestIDTestSuite) run(req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Require().NoError(RequestID()(next)(s.echo.NewContext(req, rec)))
	return rec
}

func (s *RequestIDTestSuite) TestGeneratesUUID() {
	var seen string
	rec := s.run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
		seen = GetTraceID(c)
		return c.NoContent(http.StatusOK)
	})

	_, err := uuid.Parse(seen)
	s.NoError(err, "trace ID %q is not a UUID", seen)
	s.Equal(seen, rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestReusesCallerTraceID() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "upstream-42")

	var seen string
	rec := s.run(req, func(c echo.Context) error {
		seen = GetTraceID(c)
		return c.NoContent(http.StatusOK)
	})

	s.Equal("upstream-42", seen)
	s.Equal("upstream-42", rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestDistinctPerRequest() {
	ids := make(map[string]bool)
	for range 5 {
		rec := s.run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		ids[rec.Header().Get(TraceIDHeader)] = true
	}
	s.Len(ids, 5)
}

func (s *RequestIDTestSuite) TestPropagatesToRequestContext() {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(TraceIDHeader, "trace-ctx")
	req.Header.Set("User-Agent", "budget-cli/1.2")
	req.RemoteAddr = "203.0.113.9:51000"

	s.run(req, func(c echo.Context) error {
		ctx := c.Request().Context()
		s.Equal("trace-ctx", services.CorrelationIDFrom(ctx))

		info := services.ClientInfoFrom(ctx)
		s.Equal("203.0.113.9", info.IPAddress)
		s.Equal("budget-cli/1.2", info.UserAgent)
		return nil
	})
}

func (s *RequestIDTestSuite) TestGetTraceID_Unset() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	s.Empty(GetTraceID(c))
}
