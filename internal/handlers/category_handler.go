package handlers

import (
	"net/http"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandler serves the user's spending categories
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns the user's categories ordered by name
// @Summary List categories
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.CategoryListResponse
// @Failure 401 {object} errors.ErrorResponse "Unauthorized - AUTH_002"
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	categories, err := h.categoryService.List(c.Request().Context(), userID)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryListResponse(categories))
}

// Create adds a category
// @Summary Create category
// @Tags Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryEnvelope
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001"
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	category, err := h.categoryService.Create(c.Request().Context(), userID, &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusCreated, dto.CategoryEnvelope{Category: dto.NewCategoryResponse(category)})
}

// Update changes the supplied fields of a category
// @Summary Update category
// @Tags Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body dto.UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} dto.CategoryEnvelope
// @Failure 400 {object} errors.ErrorResponse "Validation error - VALIDATION_001 or CATEGORY_002"
// @Failure 404 {object} errors.ErrorResponse "Not found - CATEGORY_001"
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	categoryID, appErr := parseIDParam(c, "id", errors.CategoryInvalidID)
	if appErr != nil {
		return appErr
	}

	var req dto.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	category, err := h.categoryService.Update(c.Request().Context(), userID, categoryID, &req)
	if err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.CategoryEnvelope{Category: dto.NewCategoryResponse(category)})
}

// Delete removes a category. Expenses and budgets that reference it are kept.
// @Summary Delete category
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} errors.ErrorResponse "Not found - CATEGORY_001"
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, appErr := requireUserID(c)
	if appErr != nil {
		return appErr
	}

	categoryID, appErr := parseIDParam(c, "id", errors.CategoryInvalidID)
	if appErr != nil {
		return appErr
	}

	if err := h.categoryService.Delete(c.Request().Context(), userID, categoryID); err != nil {
		return toAppError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Category deleted"})
}
