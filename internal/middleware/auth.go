package middleware

import (
	"context"
	stderrors "errors"
	"log/slog"

	"budget-tracker/internal/errors"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by RequireAuth next to handlers.UserIDContextKey.
const (
	UserEmailContextKey = "user_email"
	TokenJTIContextKey  = "token_jti"
)

// RevocationChecker reports whether an access token was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth admits requests carrying a valid, unrevoked access token and stores the
// caller's identity on the echo context.
func RequireAuth(tokenService services.TokenServiceInterface, revocations RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			switch {
			case stderrors.Is(err, services.ErrExpiredToken):
				return handlers.SendError(c, errors.AuthExpiredToken)
			case err != nil:
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.Details("Invalid user ID in token"))
			}

			ctx := c.Request().Context()
			revoked, err := revocations.IsRevoked(ctx, claims.ID)
			if err != nil {
				// Fail closed: a token whose revocation state is unknown is not trusted.
				slog.ErrorContext(ctx, "failed to check token revocation", "error", err, "jti", claims.ID)
				return handlers.SendError(c, errors.SystemServiceUnavailable)
			}
			if revoked {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.Details("Token has been revoked"))
			}

			c.Set(handlers.UserIDContextKey, userID)
			c.Set(UserEmailContextKey, claims.Email)
			c.Set(TokenJTIContextKey, claims.ID)

			return next(c)
		}
	}
}

// DevelopmentOnly hides a route outside the development environment. The route answers
// like any unknown path so its existence is not revealed.
func DevelopmentOnly(isDevelopment bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isDevelopment {
				return handlers.SendError(c, errors.SystemRouteNotFound)
			}
			return next(c)
		}
	}
}
