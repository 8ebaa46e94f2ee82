package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestConflictWrap_PreservesSentinel(t *testing.T) {
	sentinel := errors.New("property is not available for the selected dates")
	err := ConflictWrap(sentinel, "Property is not available")

	if !errors.Is(err, sentinel) {
		t.Error("wrapped sentinel must be reachable via errors.Is")
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected 409, got %d", err.HTTPStatus)
	}
}

func TestValidationWrap_PreservesSentinel(t *testing.T) {
	sentinel := errors.New("start date cannot be in the past")
	err := ValidationWrap(sentinel, "Booking validation failed", map[string]any{"field": "start_date"})

	if !errors.Is(err, sentinel) {
		t.Error("wrapped sentinel must be reachable via errors.Is")
	}
	if err.Details["field"] != "start_date" {
		t.Errorf("expected field detail, got %v", err.Details)
	}
}

func TestAsAppError_WrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected %s, got %s", CodeInternal, appErr.Code)
	}
	if !errors.Is(appErr, plain) {
		t.Error("original error must be preserved as cause")
	}
}

func TestAsAppError_PassesThrough(t *testing.T) {
	orig := NotFoundWithID("Booking", "abc")
	if AsAppError(orig) != orig {
		t.Error("AppError must pass through unchanged")
	}
}
