package dto

import (
	"time"

	"budget-tracker/internal/models"
)

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=50"`
	Icon  string `json:"icon" validate:"omitempty,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest carries a partial category update; omitted fields are unchanged
type UpdateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,notblank,max=50"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// CategoryRef is the category attached to expenses, budgets and summary rows.
// ID is null when the category has been deleted.
type CategoryRef struct {
	ID    *string `json:"id"`
	Name  string  `json:"name"`
	Icon  string  `json:"icon"`
	Color string  `json:"color"`
}

// CategoryResponse represents a category owned by the user
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryEnvelope struct {
	Category CategoryResponse `json:"category"`
}

type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCategoryListResponse(categories []models.Category) CategoryListResponse {
	resp := CategoryListResponse{Categories: make([]CategoryResponse, 0, len(categories))}
	for i := range categories {
		resp.Categories = append(resp.Categories, NewCategoryResponse(&categories[i]))
	}
	return resp
}

// NewCategoryRef renders a possibly missing category using the placeholder attributes.
func NewCategoryRef(c *models.Category) CategoryRef {
	display := models.DisplayOf(c)
	ref := CategoryRef{
		Name:  display.Name,
		Icon:  display.Icon,
		Color: display.Color,
	}
	if display.ID != nil {
		id := display.ID.String()
		ref.ID = &id
	}
	return ref
}
