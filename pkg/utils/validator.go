package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate        = validator.New()
	leadingIntRegex = regexp.MustCompile(`^[+-]?\d+`)
	controlRegex    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email format %q: %w", email, err)
	}
	return nil
}

// ParseLeadingInt reads the integer at the start of s, ignoring surrounding
// whitespace and anything after the digits: "400" and "400.50" both give
// 400. It reports false when s does not start with a digit or sign.
func ParseLeadingInt(s string) (int, bool) {
	m := leadingIntRegex.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscan(m, &n); err != nil {
		return 0, false
	}
	return n, true
}

// SanitizeFileName strips control characters and path separators so the
// name can be stored and echoed back safely
func SanitizeFileName(name string) string {
	name = controlRegex.ReplaceAllString(name, "")
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return strings.TrimSpace(name)
}
