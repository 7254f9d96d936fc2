package util

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// IsValidUUID reports whether s parses as a UUID.
func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// PasswordStrong reports whether password has at least 8 characters, a
// digit and a letter.
func PasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	var digit, letter bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		}
	}
	return digit && letter
}

// NormalizeCode trims and upper-cases a user-supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsTrackingCode reports whether code is exactly six characters of [A-Z0-9].
func IsTrackingCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(CodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
