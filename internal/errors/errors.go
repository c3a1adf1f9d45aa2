package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an error by the analysis stage that detected it
type ErrorType string

const (
	ErrTypeValidation          ErrorType = "VALIDATION"
	ErrTypeParsing             ErrorType = "PARSING"
	ErrTypeInsufficientData    ErrorType = "INSUFFICIENT_DATA"
	ErrTypeMismatch            ErrorType = "MISMATCH"
	ErrTypeInsufficientOverlap ErrorType = "INSUFFICIENT_OVERLAP"
	ErrTypeConfig              ErrorType = "CONFIG"
	ErrTypeNotFound            ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper constructors for the analysis error kinds

// NewValidationError reports a structurally invalid input table
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewParsingError reports unparseable input values (dates, numbers)
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewInsufficientDataError reports a series with too few valid returns
func NewInsufficientDataError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInsufficientData, message, cause)
}

// NewMismatchError reports a ticker set mismatch between components and weights
func NewMismatchError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMismatch, message, cause)
}

// NewInsufficientOverlapError reports components with no common trading dates
func NewInsufficientOverlapError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInsufficientOverlap, message, cause)
}

// NewConfigError reports invalid or unreadable configuration
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError reports missing input files or tickers
func NewNotFoundError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, message, cause)
}

// IsType reports whether err is (or wraps) an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// GetType returns the error type, or empty string for non-application errors
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
