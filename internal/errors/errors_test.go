package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anime-shed/sharpness-inspector-go/internal/blur"
	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

func TestFromAnalysis(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantType   ErrorType
		wantStatus int
	}{
		{"decode", &imagebuf.DecodeError{Err: errors.New("bad header")}, ErrorTypeDecode, http.StatusUnprocessableEntity},
		{"empty", &imagebuf.EmptyImageError{Width: 0, Height: 3}, ErrorTypeEmptyImage, http.StatusUnprocessableEntity},
		{"threshold", &blur.InvalidThresholdError{Threshold: -1}, ErrorTypeInvalidThreshold, http.StatusBadRequest},
		{"wrapped threshold", fmt.Errorf("classify: %w", &blur.InvalidThresholdError{Threshold: -1}), ErrorTypeInvalidThreshold, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"cancelled", context.Canceled, ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"passthrough", NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromAnalysis(tt.err)
			if appErr.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, appErr.Type)
			}
			if appErr.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, appErr.StatusCode)
			}
			if !errors.Is(appErr, tt.err) && tt.name != "passthrough" {
				t.Error("Expected cause to be preserved")
			}
		})
	}

	if FromAnalysis(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestIsTypeAndStatusCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewValidationError("bad input", nil))

	if !IsType(err, ErrorTypeValidation) {
		t.Error("Expected wrapped validation error to be detected")
	}
	if IsType(err, ErrorTypeNetwork) {
		t.Error("Unexpected type match")
	}
	if got := GetStatusCode(err); got != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", got)
	}
	if got := GetStatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("Expected 500 for plain errors, got %d", got)
	}
}

func TestAppError_Message(t *testing.T) {
	err := NewNetworkError("fetch failed", errors.New("connection reset"))
	want := "network: fetch failed (caused by: connection reset)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	plain := NewUnavailableError("face detection disabled", nil).WithDetails("FACE_CASCADE_PATH not set")
	if plain.Error() != "unavailable: face detection disabled" {
		t.Errorf("Unexpected message %q", plain.Error())
	}
	if plain.Details != "FACE_CASCADE_PATH not set" || plain.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Unexpected error fields: %+v", plain)
	}
}
