package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anime-shed/sharpness-inspector-go/internal/blur"
	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeProcessing       ErrorType = "processing"
	ErrorTypeTimeout          ErrorType = "timeout"
	ErrorTypeUnauthorized     ErrorType = "unauthorized"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeInternal         ErrorType = "internal"
	ErrorTypeDecode           ErrorType = "decode"
	ErrorTypeEmptyImage       ErrorType = "empty_image"
	ErrorTypeInvalidThreshold ErrorType = "invalid_threshold"
	ErrorTypeUnavailable      ErrorType = "unavailable"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a human readable detail string
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newAppError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewDecodeError reports bytes that are not a decodable image
func NewDecodeError(message string, cause error) *AppError {
	return newAppError(ErrorTypeDecode, http.StatusUnprocessableEntity, message, cause)
}

// NewEmptyImageError reports an image without pixels
func NewEmptyImageError(message string, cause error) *AppError {
	return newAppError(ErrorTypeEmptyImage, http.StatusUnprocessableEntity, message, cause)
}

// NewInvalidThresholdError reports a non-finite or negative threshold
func NewInvalidThresholdError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInvalidThreshold, http.StatusBadRequest, message, cause)
}

// NewUnavailableError reports a disabled or unconfigured collaborator
func NewUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message, cause)
}

// FromAnalysis translates blur pipeline failures into AppErrors. AppErrors pass
// through unchanged; anything unrecognised becomes a processing error.
func FromAnalysis(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, imagebuf.ErrDecode):
		return NewDecodeError("invalid image file", err)
	case errors.Is(err, imagebuf.ErrEmptyImage):
		return NewEmptyImageError("image has no pixels", err)
	case errors.Is(err, blur.ErrInvalidThreshold):
		return NewInvalidThresholdError("invalid threshold", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError("analysis timed out", err)
	case errors.Is(err, context.Canceled):
		return NewTimeoutError("analysis cancelled", err)
	default:
		return NewProcessingError("analysis failed", err)
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
