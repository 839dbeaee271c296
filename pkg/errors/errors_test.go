package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodePrecondition, "span %d exceeds %d lanes", 3, 2), "PRECONDITION: span 3 exceeds 2 lanes"},
		{"wrapped", Wrap(ErrCodeNetwork, cause, "save snapshot %s", "top"), "NETWORK_ERROR: save snapshot top: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapChain(t *testing.T) {
	cause := errors.New("connection refused")
	inner := New(ErrCodeMissingEntry, "no entry for position 4")
	err := Wrap(ErrCodeNetwork, Wrap(ErrCodeInternal, cause, "mid"), "outer")

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := errors.Unwrap(Wrap(ErrCodeTimeout, inner, "x")); got != inner {
		t.Errorf("Unwrap() = %v, want %v", got, inner)
	}
	if got := GetCode(err); got != ErrCodeNetwork {
		t.Errorf("GetCode() = %v, want outer code %v", got, ErrCodeNetwork)
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      Code
		invariant bool
		message   string
	}{
		{"precondition", New(ErrCodePrecondition, "span 3 exceeds 2 lanes"), ErrCodePrecondition, true, "span 3 exceeds 2 lanes"},
		{"missing entry", Wrap(ErrCodeMissingEntry, errors.New("gone"), "position 4"), ErrCodeMissingEntry, true, "position 4"},
		{"invalid snapshot", New(ErrCodeInvalidSnapshot, "lane count 0"), ErrCodeInvalidSnapshot, false, "lane count 0"},
		{"outer code wins", Wrap(ErrCodeNetwork, New(ErrCodePrecondition, "inner"), "store"), ErrCodeNetwork, false, "store"},
		{"plain error", errors.New("plain"), "", false, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %v, want %v", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%v) = false, want true", tt.code)
			}
			if got := IsInvariant(tt.err); got != tt.invariant {
				t.Errorf("IsInvariant() = %v, want %v", got, tt.invariant)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestNilError(t *testing.T) {
	if Is(nil, "") || Is(nil, ErrCodeInternal) {
		t.Error("Is(nil) = true, want false")
	}
	if GetCode(nil) != "" {
		t.Errorf("GetCode(nil) = %q, want empty", GetCode(nil))
	}
	if IsInvariant(nil) {
		t.Error("IsInvariant(nil) = true, want false")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidPolicy, http.StatusBadRequest},
		{ErrCodeUnsupported, http.StatusBadRequest},
		{ErrCodeSessionNotFound, http.StatusNotFound},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeTimeout, http.StatusServiceUnavailable},
		{ErrCodePrecondition, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("%q.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
