package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation  ErrorCode = "VALIDATION_ERROR"
	ErrNotFound    ErrorCode = "NOT_FOUND"
	ErrBinding     ErrorCode = "BINDING_ERROR"
	ErrInternal    ErrorCode = "INTERNAL_ERROR"
	ErrUnavailable ErrorCode = "UNAVAILABLE"
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// FileMappingError is returned when a path mapper cannot translate a path.
type FileMappingError struct {
	Path string
	Err  error
}

func (e *FileMappingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("map path %q", e.Path)
	}
	return fmt.Sprintf("map path %q: %v", e.Path, e.Err)
}

func (e *FileMappingError) Unwrap() error {
	return e.Err
}

// BindingError wraps any failure raised while transforming a job's values.
type BindingError struct {
	Op  string
	Err error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}
