package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/database"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/middleware"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories/repository_mocks"
	"budget-tracker/internal/services/service_mocks"
	"budget-tracker/internal/spending"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type connectedStore struct{}

func (connectedStore) Status() database.Status {
	return database.Status{State: database.StateConnected, CheckedAt: time.Now()}
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

type ServerSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	tokenService   *service_mocks.MockTokenServiceInterface
	blacklist      *repository_mocks.MockBlacklistedTokenRepositoryInterface
	expenseService *service_mocks.MockExpenseServiceInterface
	cfg            *config.Config
	rateLimiter    *middleware.IPRateLimiter
}

func (s *ServerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokenService = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.blacklist = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.expenseService = service_mocks.NewMockExpenseServiceInterface(s.ctrl)
	s.rateLimiter = nil
	s.cfg = &config.Config{
		Server: config.ServerConfig{
			Host:             "localhost",
			Port:             "0",
			Environment:      "production",
			CORSAllowOrigins: []string{"*"},
		},
	}
}

func (s *ServerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServerSuite) newServer() *Server {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	resolver := spending.NewResolverWithClock(time.UTC, func() time.Time { return now })

	authService := service_mocks.NewMockAuthServiceInterface(s.ctrl)
	auditService := service_mocks.NewMockAuditServiceInterface(s.ctrl)

	return New(s.cfg, Dependencies{
		TokenService: s.tokenService,
		Revocations:  s.blacklist,
		RateLimiter:  s.rateLimiter,
		Gatherer:     prometheus.NewRegistry(),
	}, Handlers{
		Auth:     handlers.NewAuthHandler(authService, auditService),
		Category: handlers.NewCategoryHandler(service_mocks.NewMockCategoryServiceInterface(s.ctrl)),
		Expense:  handlers.NewExpenseHandler(s.expenseService, resolver),
		Budget:   handlers.NewBudgetHandler(service_mocks.NewMockBudgetServiceInterface(s.ctrl), resolver),
		Health:   handlers.NewHealthCheckHandler(connectedStore{}),
		Dev:      handlers.NewDevHandler(s.expenseService, resolver),
	})
}

func (s *ServerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.newServer().Handler().ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) expectValidToken(userID uuid.UUID) {
	claims := &models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"},
		UserID:           userID.String(),
		Email:            "ana@example.com",
	}
	s.tokenService.EXPECT().ExtractTokenFromHeader("Bearer good").Return("good", nil)
	s.tokenService.EXPECT().ValidateAccessToken("good").Return(claims, nil)
	s.blacklist.EXPECT().IsRevoked(gomock.Any(), "jti-1").Return(false, nil)
}

func (s *ServerSuite) TestHealth() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"healthy"`)
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.NotEmpty(rec.Header().Get(middleware.TraceIDHeader))
}

func (s *ServerSuite) TestRateLimitKeysOnPeerAddress() {
	s.rateLimiter = middleware.NewIPRateLimiter(1, 1)
	srv := s.newServer()

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "198.51.100.9:7000"
		req.Header.Set(echo.HeaderXForwardedFor, forwarded)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	s.Equal([]int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func (s *ServerSuite) TestMetrics() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestUnknownRoute() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), string(errors.SystemRouteNotFound))
}

func (s *ServerSuite) TestProtectedRouteNeedsToken() {
	for _, path := range []string{"/api/expenses", "/api/budgets", "/api/categories", "/api/auth/me"} {
		rec := s.serve(httptest.NewRequest(http.MethodGet, path, nil))

		s.Equal(http.StatusUnauthorized, rec.Code, path)
		s.Contains(rec.Body.String(), string(errors.AuthMissingToken), path)
	}
}

func (s *ServerSuite) TestSummaryIsNotTreatedAsAnID() {
	userID := uuid.New()
	s.expectValidToken(userID)
	s.expenseService.EXPECT().Summary(gomock.Any(), userID, gomock.Any()).
		Return(&models.MonthlySummary{Period: spending.Period{Month: 5, Year: 2024}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/expenses/summary", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := s.serve(req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"summary":[],"grandTotal":0,"month":5,"year":2024}`, rec.Body.String())
}

func (s *ServerSuite) TestDevSeedHiddenOutsideDevelopment() {
	rec := s.serve(httptest.NewRequest(http.MethodPost, "/api/dev/seed", nil))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), string(errors.SystemRouteNotFound))
}

func (s *ServerSuite) TestDevSeedInDevelopment() {
	s.cfg.Server.Environment = "development"
	userID := uuid.New()
	s.expectValidToken(userID)
	s.expenseService.EXPECT().Seed(gomock.Any(), userID, gomock.Any(), 0).Return(25, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/dev/seed", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := s.serve(req)

	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), `"created":25`)
}
