package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials     ErrorCode = "AUTH_001"
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
	AuthAccountLocked          ErrorCode = "AUTH_006"
	AuthInvalidRefreshToken    ErrorCode = "AUTH_007"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidAmount ErrorCode = "VALIDATION_006"
	ValidationInvalidDate   ErrorCode = "VALIDATION_007"
	ValidationWeakPassword  ErrorCode = "VALIDATION_008"
)

// User error codes (USER_*)
const (
	UserNotFound      ErrorCode = "USER_001"
	UserAlreadyExists ErrorCode = "USER_002"
)

// Category error codes (CATEGORY_*)
const (
	CategoryNotFound  ErrorCode = "CATEGORY_001"
	CategoryInvalidID ErrorCode = "CATEGORY_002"
)

// Expense error codes (EXPENSE_*)
const (
	ExpenseNotFound  ErrorCode = "EXPENSE_001"
	ExpenseInvalidID ErrorCode = "EXPENSE_002"
)

// Budget error codes (BUDGET_*)
const (
	BudgetNotFound      ErrorCode = "BUDGET_001"
	BudgetAlreadyExists ErrorCode = "BUDGET_002"
	BudgetInvalidID     ErrorCode = "BUDGET_003"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemRouteNotFound      ErrorCode = "SYSTEM_007"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials:     "Invalid credentials",
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",
	AuthAccountLocked:          "Account is locked after too many failed login attempts",
	AuthInvalidRefreshToken:    "Refresh token is invalid or has been revoked",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidEmail:  "Invalid email format",
	ValidationInvalidAmount: "Amount must be greater than 0",
	ValidationInvalidDate:   "Invalid month or year",
	ValidationWeakPassword:  "Password does not meet the password policy",

	// User errors
	UserNotFound:      "User not found",
	UserAlreadyExists: "User already exists",

	// Category errors
	CategoryNotFound:  "Category not found",
	CategoryInvalidID: "Invalid category ID format",

	// Expense errors
	ExpenseNotFound:  "Expense not found",
	ExpenseInvalidID: "Invalid expense ID format",

	// Budget errors
	BudgetNotFound:      "Budget not found",
	BudgetAlreadyExists: "A budget already exists for this category and month",
	BudgetInvalidID:     "Invalid budget ID format",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemRouteNotFound:      "Resource not found",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
