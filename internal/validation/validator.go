package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	minYear = 1970
	maxYear = 9999

	// maxAmountScale matches the decimal(15,2) money columns.
	maxAmountScale = 2
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("decimal_gt0", validateDecimalGreaterThanZero)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("month", validateMonth)
	_ = v.RegisterValidation("budget_year", validateBudgetYear)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct using the configured rules
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// validateDecimalGreaterThanZero accepts a decimal string (or json.Number) that is
// strictly positive with at most two fractional digits.
func validateDecimalGreaterThanZero(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}

	if !amount.IsPositive() {
		return false
	}

	return amount.Equal(amount.Truncate(maxAmountScale))
}

// validateNotBlank rejects strings made only of whitespace
func validateNotBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateMonth(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		m := fl.Field().Int()
		return m >= 1 && m <= 12
	default:
		return false
	}
}

func validateBudgetYear(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		y := fl.Field().Int()
		return y >= minYear && y <= maxYear
	default:
		return false
	}
}

// FormatErrors turns validator errors into "field: message" details
func FormatErrors(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		details = append(details, fe.Field()+": "+messageFor(fe))
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "hexcolor":
		return "must be a hex color like #6366F1"
	case "decimal_gt0":
		return "must be a number greater than 0 with at most 2 decimal places"
	case "month":
		return "must be between 1 and 12"
	case "budget_year":
		return "must be between 1970 and 9999"
	case "min":
		return "must be at least " + fe.Param() + lengthUnit(fe)
	case "max":
		return "must be at most " + fe.Param() + lengthUnit(fe)
	default:
		return "is invalid"
	}
}

func lengthUnit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}
