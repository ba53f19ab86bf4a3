package handlers

import (
	stderrors "errors"
	"strconv"
	"strings"

	"budget-tracker/internal/errors"
	"budget-tracker/internal/spending"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserIDContextKey is where the auth middleware stores the authenticated user's id
const UserIDContextKey = "user_id"

var ErrUnauthorized = stderrors.New("unauthorized")

// requireUserID reads the id RequireAuth stored. Reaching a handler without one means the
// route was registered outside the auth group.
func requireUserID(c echo.Context) (uuid.UUID, *errors.AppError) {
	userID, ok := c.Get(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errors.Wrap(errors.AuthMissingToken, ErrUnauthorized)
	}
	return userID, nil
}

// optionalIntQuery returns nil when the parameter is absent or not an integer, so the
// caller falls back to its default.
func optionalIntQuery(c echo.Context, name string) *int {
	param := strings.TrimSpace(c.QueryParam(name))
	if param == "" {
		return nil
	}
	value, err := strconv.Atoi(param)
	if err != nil {
		return nil
	}
	return &value
}

func intQuery(c echo.Context, name string, def int) int {
	if value := optionalIntQuery(c, name); value != nil {
		return *value
	}
	return def
}

// periodFromQuery resolves ?month&year against the current month. Values that parse but
// are out of range are rejected.
func periodFromQuery(c echo.Context, resolver *spending.Resolver) (spending.Period, *errors.AppError) {
	period := resolver.Resolve(optionalIntQuery(c, "month"), optionalIntQuery(c, "year"))
	if err := period.Validate(); err != nil {
		return spending.Period{}, errors.Wrap(errors.ValidationInvalidDate, err, errors.Details(err.Error()))
	}
	return period, nil
}

// parseIDParam reads a uuid path parameter, reporting a malformed id with the given code.
func parseIDParam(c echo.Context, name string, code errors.ErrorCode) (uuid.UUID, *errors.AppError) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.Wrap(code, err)
	}
	return id, nil
}
