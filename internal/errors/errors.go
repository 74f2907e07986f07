// Package errors provides custom error types for the traveldesk API.
// All service-layer errors should use AppError so handlers can render
// consistent responses without leaking internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "You do not have permission to access this resource", StatusCode: http.StatusForbidden}
	ErrAdminOnly          = &AppError{Code: "ADMIN_ONLY", Message: "Only administrators can perform this action", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "The given data was invalid", StatusCode: http.StatusUnprocessableEntity}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusUnprocessableEntity}
	ErrSelfDelete     = &AppError{Code: "SELF_DELETE", Message: "You cannot delete your own account", StatusCode: http.StatusForbidden}
)

// Password reset errors.
var (
	ErrResetTokenInvalid = &AppError{Code: "RESET_TOKEN_INVALID", Message: "The password reset token is invalid or has expired", StatusCode: http.StatusBadRequest}
)

// Travel request errors.
var (
	ErrTravelRequestNotFound = &AppError{Code: "TRAVEL_REQUEST_NOT_FOUND", Message: "Travel request not found", StatusCode: http.StatusNotFound}
	ErrRequestApproved       = &AppError{Code: "REQUEST_APPROVED", Message: "An approved travel request cannot be modified", StatusCode: http.StatusForbidden}
	ErrSelfApproval          = &AppError{Code: "SELF_APPROVAL", Message: "You cannot change the status of your own travel request", StatusCode: http.StatusForbidden}
	ErrInvalidStatus         = &AppError{Code: "INVALID_STATUS", Message: "Status must be either approved or cancelled", StatusCode: http.StatusUnprocessableEntity}
	ErrInvalidDateRange      = &AppError{Code: "INVALID_DATE_RANGE", Message: "Return date must be after the departure date", StatusCode: http.StatusUnprocessableEntity}
	ErrDepartureInPast       = &AppError{Code: "DEPARTURE_IN_PAST", Message: "Departure date must be today or in the future", StatusCode: http.StatusUnprocessableEntity}
)

// Location errors.
var (
	ErrUpstreamLocation = &AppError{Code: "UPSTREAM_LOCATION_ERROR", Message: "Failed to fetch municipality data", StatusCode: http.StatusInternalServerError}
)
