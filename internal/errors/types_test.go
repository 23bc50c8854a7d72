package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPExceptionError(t *testing.T) {
	tests := []struct {
		name     string
		exc      *HTTPException
		expected string
	}{
		{
			name:     "with message",
			exc:      NotFound("user 42 does not exist"),
			expected: "404 user 42 does not exist",
		},
		{
			name:     "without message falls back to status text",
			exc:      NewHTTPException(http.StatusConflict, ""),
			expected: "409 Conflict",
		},
		{
			name:     "with cause",
			exc:      InternalServerError("render failed").WithCause(errors.New("boom")),
			expected: "500 render failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exc.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHTTPExceptionIs(t *testing.T) {
	err := fmt.Errorf("handler: %w", Forbidden("nope"))

	if !errors.Is(err, &HTTPException{StatusCode: http.StatusForbidden}) {
		t.Error("expected wrapped 403 to match a 403 target")
	}
	if errors.Is(err, &HTTPException{StatusCode: http.StatusNotFound}) {
		t.Error("403 must not match a 404 target")
	}
	if !errors.Is(err, &HTTPException{}) {
		t.Error("zero-status target should match any HTTPException")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"http exception", UnprocessableEntity("bad payload"), 422},
		{"wrapped http exception", fmt.Errorf("x: %w", Unauthorized("")), 401},
		{"route sentinel", ErrRouteNotFound, 404},
		{"wrapped route sentinel", fmt.Errorf("GET /nope: %w", ErrRouteNotFound), 404},
		{"unexpected error", errors.New("disk on fire"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.status {
				t.Errorf("StatusOf() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	if got := MessageOf(errors.New("pq: connection refused")); got != "Internal Server Error" {
		t.Errorf("MessageOf() leaked internal detail: %q", got)
	}
	if got := MessageOf(BadRequest("missing id")); got != "missing id" {
		t.Errorf("MessageOf() = %q, want %q", got, "missing id")
	}
}

func TestProviderNotFoundError(t *testing.T) {
	err := &ProviderNotFoundError{Token: "UserService"}
	if err.Error() != `provider not found for token "UserService"` {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, &ProviderNotFoundError{}) {
		t.Error("empty-token target should match any ProviderNotFoundError")
	}
}

func TestCircularDependencyErrorChain(t *testing.T) {
	err := &CircularDependencyError{Token: "A", Chain: []string{"A", "B", "A"}}
	expected := `circular dependency detected for token "A": A -> B -> A`
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}
