package errors

import (
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		check func() error
		code  Code
	}{
		{"key simple", func() error { return ValidateKey("top") }, ""},
		{"key scoped", func() error { return ValidateKey("cli:snapshot:grid-4") }, ""},
		{"key dotted", func() error { return ValidateKey("v1.2_list") }, ""},
		{"key empty", func() error { return ValidateKey("") }, ErrCodeInvalidKey},
		{"key too long", func() error { return ValidateKey(strings.Repeat("k", maxKeyLen+1)) }, ErrCodeInvalidKey},
		{"key traversal", func() error { return ValidateKey("..") }, ErrCodeInvalidKey},
		{"key slash", func() error { return ValidateKey("a/b") }, ErrCodeInvalidKey},
		{"key space", func() error { return ValidateKey("my snapshot") }, ErrCodeInvalidKey},

		{"path relative", func() error { return ValidatePath("examples/scenarios/grid-gallery.toml") }, ""},
		{"path absolute", func() error { return ValidatePath("/tmp/window.svg") }, ""},
		{"path empty", func() error { return ValidatePath("") }, ErrCodeInvalidInput},
		{"path too long", func() error { return ValidatePath(strings.Repeat("p", maxPathLen+1)) }, ErrCodeInvalidInput},
		{"path null byte", func() error { return ValidatePath("feed\x00.toml") }, ErrCodeInvalidInput},
		{"path newline", func() error { return ValidatePath("feed\n.toml") }, ErrCodeInvalidInput},

		{"range low edge", func() error { return ValidateRange("lanes", 1, 1, 64) }, ""},
		{"range high edge", func() error { return ValidateRange("lanes", 64, 1, 64) }, ""},
		{"range below", func() error { return ValidateRange("lanes", 0, 1, 64) }, ErrCodeInvalidInput},
		{"range above", func() error { return ValidateRange("lanes", 65, 1, 64) }, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if got := GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateRangeMessage(t *testing.T) {
	err := ValidateRange("--cell-width", 0, 1, 10000)
	if want := "--cell-width must be between 1 and 10000, got 0"; UserMessage(err) != want {
		t.Errorf("UserMessage() = %q, want %q", UserMessage(err), want)
	}
}
