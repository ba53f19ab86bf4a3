package handlers

import (
	"net/http"
	"strings"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/models"
	"budget-tracker/internal/services"
	"budget-tracker/internal/spending"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler serves the expense ledger and its monthly summary
type ExpenseHandler struct {
	expenseService services.ExpenseServiceInterface
	resolver       *spending.Resolver
}

func NewExpenseHandler(expenseService services.ExpenseServiceInterface, resolver *spending.Resolver) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		resolver:       resolver,
	}
}

// List returns the user's expenses, newest first, with their total
// @Summary List expenses
// @Description The month filter applies only when both month and year are given
// @Tags Expenses
// @Security BearerAuth
// @Produce json
// @Param month query int false "Month (1-12)"
// @Param year query int false "Year"
// @Param category query string false "Category ID"
// @Success 200 {object} dto.ExpenseListResponse
// @Failure 400 {object} errors.ErrorResponse "Invalid filter - VALIDATION_007 or CATEGORY_002"
// @Router /expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	var filter models.ExpenseListFilter

	month, year := optionalIntQuery(c, "month"), optionalIntQuery(c, "year")
	if month != nil && year != nil {
		period := h.resolver.Resolve(month, year)
		if err := period.Validate(); err != nil {
			return errors.Wrap(errors.ValidationInvalidDate, err, errors.Details(err.Error()))
		}
		filter.Period = &period
	}

	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return errors.Wrap(errors.CategoryInvalidID, err)
		}
		filter.CategoryID = &categoryID
	}

	list, err := h.expenseService.List(c.Request().Context(), userID, filter)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.NewExpenseListResponse(list))
}

// Create records an expense and reports whether it pushed its budget over a threshold
// @Summary Create expense
// @Description budgetAlert is null when no budget covers the expense or spending stays below the warning threshold
// @Tags Expenses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Success 201 {object} dto.CreateExpenseResponse
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Failure 404 {object} errors.ErrorResponse "Category not found - CATEGORY_001"
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	var req dto.CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	created, err := h.expenseService.Create(c.Request().Context(), userID, &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusCreated, dto.NewCreateExpenseResponse(created))
}

// Update changes the supplied fields of an expense
// @Summary Update expense
// @Tags Expenses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body dto.UpdateExpenseRequest true "Fields to change"
// @Success 200 {object} dto.ExpenseEnvelope
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001 or EXPENSE_002"
// @Failure 404 {object} errors.ErrorResponse "Not found - EXPENSE_001 or CATEGORY_001"
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	expenseID, appErr := parseIDParam(c, "id", errors.ExpenseInvalidID)
	if appErr != nil {
		return appErr
	}

	var req dto.UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	expense, err := h.expenseService.Update(c.Request().Context(), userID, expenseID, &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.ExpenseEnvelope{Expense: dto.NewExpenseResponse(expense)})
}

// Delete removes an expense
// @Summary Delete expense
// @Tags Expenses
// @Security BearerAuth
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} errors.ErrorResponse "Not found - EXPENSE_001"
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	expenseID, appErr := parseIDParam(c, "id", errors.ExpenseInvalidID)
	if appErr != nil {
		return appErr
	}

	if err := h.expenseService.Delete(c.Request().Context(), userID, expenseID); err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Expense deleted"})
}

// Summary groups a month of spending by category, largest total first
// @Summary Monthly summary
// @Tags Expenses
// @Security BearerAuth
// @Produce json
// @Param month query int false "Month (1-12), defaults to the current month"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} errors.ErrorResponse "Invalid month or year - VALIDATION_007"
// @Router /expenses/summary [get]
func (h *ExpenseHandler) Summary(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	period, appErr := periodFromQuery(c, h.resolver)
	if appErr != nil {
		return appErr
	}

	summary, err := h.expenseService.Summary(c.Request().Context(), userID, period)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.NewSummaryResponse(summary))
}
