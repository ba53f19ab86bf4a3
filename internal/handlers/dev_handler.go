package handlers

import (
	"fmt"
	"net/http"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/services"
	"budget-tracker/internal/spending"

	"github.com/labstack/echo/v4"
)

// DevHandler handles development-only endpoints
// These endpoints should only be available in development environments
type DevHandler struct {
	expenseService services.ExpenseServiceInterface
	resolver       *spending.Resolver
}

// NewDevHandler creates a new development handler
func NewDevHandler(expenseService services.ExpenseServiceInterface, resolver *spending.Resolver) *DevHandler {
	return &DevHandler{
		expenseService: expenseService,
		resolver:       resolver,
	}
}

// Seed generates realistic demo expenses across the user's categories
//
// Method: POST /api/dev/seed
// Authentication: Required
// Environment: Development only
//
// Body (all optional):
//   - count: Number of expenses to generate (default: 20, max: 500)
//   - month, year: Month to fill (default: current month)
//
// Success Response: 201 Created
//   - message, created, month, year
//
// Error Responses:
//   - 400: Invalid parameters, or the user has no categories yet
//   - 401: Unauthorized
//   - 500: Internal server error
func (h *DevHandler) Seed(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	// The body is optional
	var req dto.SeedExpensesRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return invalidBody(err)
		}
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	period := h.resolver.Resolve(req.Month, req.Year)

	created, err := h.expenseService.Seed(c.Request().Context(), userID, period, req.Count)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusCreated, dto.SeedExpensesResponse{
		Message: fmt.Sprintf("Generated %d demo expenses for %s", created, period),
		Created: created,
		Month:   period.Month,
		Year:    period.Year,
	})
}
