// Package server assembles the echo instance: global middleware, error handling and routes.
package server

import (
	"context"
	"net/http"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/middleware"
	"budget-tracker/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const bodyLimit = "1M"

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Category *handlers.CategoryHandler
	Expense  *handlers.ExpenseHandler
	Budget   *handlers.BudgetHandler
	Health   *handlers.HealthCheckHandler
	Dev      *handlers.DevHandler
}

// Dependencies are the collaborators the middleware chain needs.
type Dependencies struct {
	TokenService services.TokenServiceInterface
	Revocations  middleware.RevocationChecker
	RateLimiter  *middleware.IPRateLimiter
	Gatherer     prometheus.Gatherer
}

// Server wraps the configured echo instance.
type Server struct {
	echo    *echo.Echo
	address string
}

// New wires up middleware and routes and returns a ready server.
func New(cfg *config.Config, deps Dependencies, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()
	e.IPExtractor = middleware.ClientIPExtractor(cfg.Server.TrustedProxies)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(bodyLimit))
	if deps.RateLimiter != nil {
		e.Use(deps.RateLimiter.Middleware())
	}

	registerRoutes(e, cfg, deps, h)

	return &Server{echo: e, address: cfg.Server.Address()}
}

func registerRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies, h Handlers) {
	e.GET("/health", h.Health.HealthCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	requireAuth := middleware.RequireAuth(deps.TokenService, deps.Revocations)
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout, requireAuth)
	auth.GET("/me", h.Auth.Me, requireAuth)
	auth.GET("/activity", h.Auth.Activity, requireAuth)

	categories := api.Group("/categories", requireAuth)
	categories.GET("", h.Category.List)
	categories.POST("", h.Category.Create)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)

	expenses := api.Group("/expenses", requireAuth)
	expenses.GET("", h.Expense.List)
	expenses.POST("", h.Expense.Create)
	expenses.GET("/summary", h.Expense.Summary)
	expenses.PUT("/:id", h.Expense.Update)
	expenses.DELETE("/:id", h.Expense.Delete)

	budgets := api.Group("/budgets", requireAuth)
	budgets.GET("", h.Budget.List)
	budgets.POST("", h.Budget.Set)
	budgets.DELETE("/:id", h.Budget.Delete)

	dev := api.Group("/dev", middleware.DevelopmentOnly(cfg.IsDevelopment()), requireAuth)
	dev.POST("/seed", h.Dev.Seed)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.echo.Start(s.address)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ShutdownTimeout bounds how long in-flight requests get once a signal arrives.
const ShutdownTimeout = 30 * time.Second
