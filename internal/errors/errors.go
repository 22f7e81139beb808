package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Kudos error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED" // 422
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrStorage          ErrorCode = "STORAGE"           // 500
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// KudosError represents a structured error with code, status, and details.
type KudosError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *KudosError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *KudosError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *KudosError {
	return &KudosError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a feedback record cannot be found.
func NewNotFound(id int64) *KudosError {
	return &KudosError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("feedback record not found: %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewReviewTooShort creates a 422 error for a review below the minimum length.
// It is user-correctable and is raised before any generation is attempted.
func NewReviewTooShort(min, actual int) *KudosError {
	return &KudosError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: fmt.Sprintf("please write at least %d characters in your review (got %d)", min, actual),
		Details: map[string]any{"min_chars": min, "actual_chars": actual},
	}
}

// NewCancelled creates an error for an operation stopped by context cancellation.
func NewCancelled(op string) *KudosError {
	return &KudosError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewStorage creates a 500 error for a failure to read or write the record table.
// Storage errors always propagate; callers must not treat them as recoverable.
func NewStorage(op string, err error) *KudosError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &KudosError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *KudosError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &KudosError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		Err:     err,
	}
}

// Is checks if an error (or anything it wraps) is a KudosError with the given code.
func Is(err error, code ErrorCode) bool {
	var kErr *KudosError
	if stderrors.As(err, &kErr) {
		return kErr.Code == code
	}
	return false
}
