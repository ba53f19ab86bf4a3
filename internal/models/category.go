package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCategoryIcon  = "tag"
	DefaultCategoryColor = "#6366F1"

	MaxCategoryNameLength = 50
)

// Shown in place of a category that was deleted while expenses or budgets still reference it.
const (
	PlaceholderCategoryName  = "Uncategorized"
	PlaceholderCategoryIcon  = "tag"
	PlaceholderCategoryColor = "#9CA3AF"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNameTooLong  = errors.New("category name is too long")
	ErrInvalidCategoryColor = errors.New("category color must be a hex color like #AABBCC")

	hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Category is a per-user tag that expenses and budgets reference.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Icon      string    `gorm:"type:varchar(50);not null;default:'tag'" json:"icon"`
	Color     string    `gorm:"type:varchar(7);not null;default:'#6366F1'" json:"color"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	c.Name = strings.TrimSpace(c.Name)
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}

	return c.Validate()
}

func (c *Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrCategoryNameRequired
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return ErrCategoryNameTooLong
	}
	if c.Color != "" && !hexColorRegex.MatchString(c.Color) {
		return ErrInvalidCategoryColor
	}
	return nil
}

func (c *Category) TableName() string {
	return "categories"
}

// CategoryDisplay holds the attributes a client needs to render a category reference.
type CategoryDisplay struct {
	ID      *uuid.UUID
	Name    string
	Icon    string
	Color   string
	Missing bool
}

// DisplayOf returns the display attributes of c, or the placeholder when c is nil.
func DisplayOf(c *Category) CategoryDisplay {
	if c == nil {
		return CategoryDisplay{
			Name:    PlaceholderCategoryName,
			Icon:    PlaceholderCategoryIcon,
			Color:   PlaceholderCategoryColor,
			Missing: true,
		}
	}
	id := c.ID
	return CategoryDisplay{
		ID:    &id,
		Name:  c.Name,
		Icon:  c.Icon,
		Color: c.Color,
	}
}
