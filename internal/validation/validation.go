// Package validation contains input validators shared by the HTTP handlers.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

const (
	minPasswordLen = 12
	maxPasswordLen = 128
	maxEmailLen    = 254
	maxReasonLen   = 500
	maxTagLen      = 32
	maxTagCount    = 10
)

// ValidateEmail checks RFC 5322 shape and length.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must be at most %d characters", maxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	if strings.HasSuffix(email, ".") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword enforces length plus upper, lower, digit and special
// character classes.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLen)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("password must contain upper and lower case letters, a digit and a special character")
	}
	return nil
}

// ValidateFlagReason checks a moderation report reason.
func ValidateFlagReason(reason string) error {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return fmt.Errorf("flag reason is required")
	}
	if len(trimmed) > maxReasonLen {
		return fmt.Errorf("flag reason must be at most %d characters", maxReasonLen)
	}
	return nil
}

// ValidateTags checks a post's tag list: non-empty, bounded, no blank or
// oversized entries.
func ValidateTags(tags []string) error {
	if len(tags) == 0 {
		return fmt.Errorf("at least one tag is required")
	}
	if len(tags) > maxTagCount {
		return fmt.Errorf("at most %d tags are allowed", maxTagCount)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must not be blank")
		}
		if len(tag) > maxTagLen {
			return fmt.Errorf("tags must be at most %d characters", maxTagLen)
		}
	}
	return nil
}
