package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeSchema indicates an input table violates the column contract
	ErrorTypeSchema ErrorType = "SCHEMA"

	// ErrorTypeInsufficientData indicates too few rows to train a model
	ErrorTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"

	// ErrorTypeUnknownPlant indicates a plant name missing from the catalog
	ErrorTypeUnknownPlant ErrorType = "UNKNOWN_PLANT"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates the session is not in the state the operation needs
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Field names the offending column for schema errors.
	Field string
	Err   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewSchemaError creates a schema error naming the offending column
func NewSchemaError(column, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeSchema,
		Message: message,
		Field:   column,
	}
}

// NewInsufficientDataError creates a new insufficient data error
func NewInsufficientDataError(rows, minimum int) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientData,
		Message: fmt.Sprintf("dataset has %d rows, at least %d are required to train", rows, minimum),
	}
}

// NewUnknownPlantError creates a new unknown plant error
func NewUnknownPlantError(name string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownPlant,
		Message: fmt.Sprintf("unknown plant type %q", name),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// As extracts the AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
