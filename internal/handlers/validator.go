package handlers

import (
	"budget-tracker/internal/validation"

	"github.com/labstack/echo/v4"
)

// requestValidator lets c.Validate run the shared rule set (month, year, decimal amounts).
type requestValidator struct {
	rules *validation.Validator
}

func NewValidator() echo.Validator {
	return requestValidator{rules: validation.GetValidator()}
}

func (v requestValidator) Validate(i any) error {
	return v.rules.Struct(i)
}
