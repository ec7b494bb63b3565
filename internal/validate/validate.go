package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	rePayment = regexp.MustCompile(`^[A-Za-z0-9 _.-]{1,50}$`)
	reSize    = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,20}$`)
)

// ID parses a positive numeric resource identifier.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// PaymentMethod trims the free-form label; it is persisted as given.
func PaymentMethod(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePayment.MatchString(s)
}

// Size accepts an empty size (product default) or a short label.
func Size(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, reSize.MatchString(s)
}

// AddonName falls back to "Addon" when the name is blank.
func AddonName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Addon", true
	}
	return s, utf8.RuneCountInString(s) <= 255
}

// IdempotencyKey accepts an empty key or a UUID, returned in canonical form.
func IdempotencyKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// Limit clamps a list size query parameter.
func Limit(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
