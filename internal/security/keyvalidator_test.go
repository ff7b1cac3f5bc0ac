package security

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errType error
	}{
		// Valid keys
		{"simple", "session", nil},
		{"supabase style", "sb-project-auth-token", nil},
		{"with slashes", "users/42/token", nil},
		{"with spaces", "my key", nil},
		{"unicode", "clé-ключ", nil},
		{"max length", strings.Repeat("k", MaxKeyLength), nil},

		// Invalid keys
		{"empty", "", ErrEmptyKey},
		{"too long", strings.Repeat("k", MaxKeyLength+1), ErrKeyTooLong},
		{"invalid utf8", string([]byte{0xff, 0xfe}), ErrInvalidKey},
		{"newline", "a\nb", ErrControlCharKey},
		{"nul byte", "a\x00b", ErrControlCharKey},
		{"escape", "\x1b[31m", ErrControlCharKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if tt.errType == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.errType) {
				t.Errorf("Expected %v, got %v", tt.errType, err)
			}
		})
	}
}

func TestValidateKeys(t *testing.T) {
	if err := ValidateKeys([]string{"a", "b"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	err := ValidateKeys([]string{"a", "", "c"})
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Expected ErrEmptyKey, got %v", err)
	}
}
