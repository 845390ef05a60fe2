package booking

import "fmt"

// ValidationError reports a malformed or out-of-policy booking request.
// Reported to the caller, never retried.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &ValidationError{
		Code:    "validationError",
		Message: msg,
	}
}

// NotFoundError reports an unknown booking id.
type NotFoundError struct {
	BookingID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking not found: %s", e.BookingID)
}

// AuthorizationError reports an operation attempted by a non-owning identity.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}
