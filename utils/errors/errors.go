package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrNotFound     = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal     = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict     = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)

	// Auth gate
	ErrInvalidCredentials = NewAPIError("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthenticated    = NewAPIError("UNAUTHENTICATED", "You must be logged in", http.StatusUnauthorized)

	// Password reset flow. The token error is deliberately generic: a wrong
	// token and an expired token are indistinguishable to the caller.
	ErrUserNotFound          = NewAPIError("USER_NOT_FOUND", "No account with that email exists", http.StatusNotFound)
	ErrTokenInvalidOrExpired = NewAPIError("TOKEN_INVALID_OR_EXPIRED", "Password reset token is invalid or has expired", http.StatusBadRequest)
	ErrPasswordMismatch      = NewAPIError("PASSWORD_MISMATCH", "Passwords do not match", http.StatusBadRequest)

	// Store directory
	ErrOwnershipViolation = NewAPIError("OWNERSHIP_VIOLATION", "You must own a store in order to edit it", http.StatusForbidden)

	// Infrastructure
	ErrNotificationFailed = NewAPIError("NOTIFICATION_FAILED", "Failed to send notification email", http.StatusBadGateway)
	ErrPersistenceFailed  = NewAPIError("PERSISTENCE_FAILED", "Failed to persist changes", http.StatusInternalServerError)
)

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}
