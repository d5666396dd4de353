package handlers

import (
	"fmt"
	"net/mail"
)

// Field bounds mirror the database columns.
const (
	minUsernameLen    = 3
	maxUsernameLen    = 100
	maxEmailLen       = 100
	maxFirstNameLen   = 70
	maxLastNameLen    = 100
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	minPasswordLen    = 6
)

// Each validator returns an empty string when the value is acceptable.

func validateUsername(s string) string {
	if len(s) < minUsernameLen || len(s) > maxUsernameLen {
		return fmt.Sprintf("username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}
	return ""
}

func validateEmail(s string) string {
	if s == "" || len(s) > maxEmailLen {
		return fmt.Sprintf("email must be between 1 and %d characters", maxEmailLen)
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return "email is not a valid address"
	}
	return ""
}

func validateName(field, s string, max int) string {
	if len(s) > max {
		return fmt.Sprintf("%s must be at most %d characters", field, max)
	}
	return ""
}

func validateTitle(s string) string {
	if len(s) < 1 || len(s) > maxTitleLen {
		return fmt.Sprintf("title must be between 1 and %d characters", maxTitleLen)
	}
	return ""
}

func validateDescription(s string) string {
	if len(s) > maxDescriptionLen {
		return fmt.Sprintf("description must be at most %d characters", maxDescriptionLen)
	}
	return ""
}

func validatePassword(s string) string {
	if len(s) < minPasswordLen {
		return fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}
	return ""
}
