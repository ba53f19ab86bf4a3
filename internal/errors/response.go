package errors

import "net/http"

// ErrorResponse is the envelope every failed request is answered with.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
	TraceID string   `json:"trace_id"`
}

var statusByCode = map[ErrorCode]int{
	ValidationGeneral:          http.StatusBadRequest,
	ValidationRequiredField:    http.StatusBadRequest,
	ValidationInvalidFormat:    http.StatusBadRequest,
	ValidationOutOfRange:       http.StatusBadRequest,
	ValidationInvalidEmail:     http.StatusBadRequest,
	ValidationInvalidAmount:    http.StatusBadRequest,
	ValidationInvalidDate:      http.StatusBadRequest,
	ValidationWeakPassword:     http.StatusBadRequest,
	CategoryInvalidID:          http.StatusBadRequest,
	ExpenseInvalidID:           http.StatusBadRequest,
	BudgetInvalidID:            http.StatusBadRequest,
	AuthInvalidCredentials:     http.StatusUnauthorized,
	AuthMissingToken:           http.StatusUnauthorized,
	AuthExpiredToken:           http.StatusUnauthorized,
	AuthInvalidTokenFormat:     http.StatusUnauthorized,
	AuthInvalidRefreshToken:    http.StatusUnauthorized,
	AuthInsufficientPermission: http.StatusForbidden,
	AuthAccountLocked:          http.StatusForbidden,
	UserNotFound:               http.StatusNotFound,
	CategoryNotFound:           http.StatusNotFound,
	ExpenseNotFound:            http.StatusNotFound,
	BudgetNotFound:             http.StatusNotFound,
	SystemRouteNotFound:        http.StatusNotFound,
	UserAlreadyExists:          http.StatusConflict,
	BudgetAlreadyExists:        http.StatusConflict,
	SystemRateLimitExceeded:    http.StatusTooManyRequests,
	SystemServiceUnavailable:   http.StatusServiceUnavailable,
}

// GetHTTPStatus maps an error code to its HTTP status. Owned resources that belong to
// another user report 404 like missing ones. Unlisted codes are server errors.
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
