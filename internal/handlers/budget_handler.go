package handlers

import (
	"net/http"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/services"
	"budget-tracker/internal/spending"

	"github.com/labstack/echo/v4"
)

// BudgetHandler serves monthly category budgets and how much of each has been spent
type BudgetHandler struct {
	budgetService services.BudgetServiceInterface
	resolver      *spending.Resolver
}

func NewBudgetHandler(budgetService services.BudgetServiceInterface, resolver *spending.Resolver) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		resolver:      resolver,
	}
}

// List returns the month's budgets with spent, remaining, percentage and status
// @Summary List budgets
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Param month query int false "Month (1-12), defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} dto.BudgetListResponse
// @Failure 400 {object} errors.ErrorResponse "Invalid month or year - VALIDATION_007"
// @Router /budgets [get]
func (h *BudgetHandler) List(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	period, appErr := periodFromQuery(c, h.resolver)
	if appErr != nil {
		return appErr
	}

	budgets, err := h.budgetService.ListWithSpending(c.Request().Context(), userID, period)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.NewBudgetListResponse(budgets, period.Month, period.Year))
}

// Set creates the budget for a category and month, or replaces its limit
// @Summary Set budget
// @Tags Budgets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SetBudgetRequest true "Budget"
// @Success 201 {object} dto.BudgetEnvelope
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 404 {object} errors.ErrorResponse "Category not found - CATEGORY_001"
// @Router /budgets [post]
func (h *BudgetHandler) Set(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	var req dto.SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	budget, err := h.budgetService.Upsert(c.Request().Context(), userID, &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusCreated, dto.BudgetEnvelope{Budget: dto.NewBudgetResponse(budget)})
}

// Delete removes a budget
// @Summary Delete budget
// @Tags Budgets
// @Security BearerAuth
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} errors.ErrorResponse "Not found - BUDGET_001"
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) Delete(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	budgetID, appErr := parseIDParam(c, "id", errors.BudgetInvalidID)
	if appErr != nil {
		return appErr
	}

	if err := h.budgetService.Delete(c.Request().Context(), userID, budgetID); err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Budget deleted"})
}
