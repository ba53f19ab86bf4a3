package handlers

import (
	"net/http"
	"strings"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  services.AuthServiceInterface
	auditService services.AuditServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface, auditService services.AuditServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auditService: auditService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account and sign in. Returns the token pair together with the profile.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.TokenResponse "User created and signed in"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001 or VALIDATION_008"
// @Failure 409 {object} errors.ErrorResponse "Email already registered - USER_002"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	tokens, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusCreated, tokens)
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with email and password, receive JWT access and refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse "Login successful with JWT tokens"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 401 {object} errors.ErrorResponse "Invalid credentials - AUTH_001"
// @Failure 403 {object} errors.ErrorResponse "Account locked - AUTH_006"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	tokens, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotate a valid refresh token into a new token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse "Token refreshed successfully"
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 401 {object} errors.ErrorResponse "Invalid refresh token - AUTH_007"
// @Failure 500 {object} errors.ErrorResponse "System error - SYSTEM_001"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest

	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	tokens, err := h.authService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout handles user logout
// @Summary Logout user
// @Description Blacklist the access token and revoke the named refresh token, or every session when none is given
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} dto.MessageResponse "Logout successful"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002 or AUTH_004"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return errors.New(errors.AuthMissingToken)
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return errors.New(errors.AuthInvalidTokenFormat)
	}

	// The body is optional
	var req dto.LogoutRequest
	_ = c.Bind(&req)

	if err := h.authService.Logout(c.Request().Context(), tokenParts[1], req.RefreshToken); err != nil {
		// Security: Always return success to prevent information leakage about system internals
		c.Logger().Debugf("logout: %v", err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// Me returns the authenticated user's profile
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.CurrentUserResponse
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Failure 404 {object} errors.ErrorResponse "User not found - USER_001"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	user, err := h.authService.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.CurrentUserResponse{User: dto.NewUserResponse(user)})
}

// Activity lists the user's audit trail, newest first
// @Summary Account activity
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} dto.ActivityListResponse
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Router /auth/activity [get]
func (h *AuthHandler) Activity(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	offset := max(intQuery(c, "offset", 0), 0)
	limit := intQuery(c, "limit", defaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	logs, total, err := h.auditService.GetUserActivity(c.Request().Context(), userID, offset, limit)
	if err != nil {
		return toAppError(err)
	}

	resp := dto.ActivityListResponse{
		Activity: make([]dto.ActivityResponse, 0, len(logs)),
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	}
	for _, log := range logs {
		resp.Activity = append(resp.Activity, dto.NewActivityResponse(log))
	}

	return c.JSON(http.StatusOK, resp)
}
