package server

import (
	"regexp"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Form messages shown to the user
const (
	msgInvalidEntry       = "Invalid Entry"
	msgIncompleteLogin    = "Login failed: Incomplete data received from server."
	msgBadCredentials     = "Incorrect email or password"
	msgLoginFailed        = "Login failed. Please try again."
	msgNoServerResponse   = "No Server response. Check connection or server status."
	msgPasswordRule       = "Password must be at least 8 characters long and contain at least one letter and one number."
	msgPasswordMismatch   = "New passwords do not match."
	msgOldPasswordMissing = "Current password is required."
	msgPasswordChanged    = "Password changed successfully!"
	msgPasswordFailed     = "Failed to change password."
	msgTokenMismatch      = "Login failed: The server issued a token for a different account."

	msgScheduleNameMissing = "Schedule name is required."
	msgStartTimeMissing    = "Start time is required."
	msgEndTimeMissing      = "End time is required."
	msgTimeFormat          = "Times must be given as HH:MM."
	msgMaxEmployees        = "Maximum employees must be a positive number."
	msgScheduleSaveFailed  = "Failed to save schedule."
	msgScheduleSaved       = "Schedule saved."
	msgScheduleDeleted     = "Schedule deleted."
)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validLoginPassword accepts 8 to 24 characters with at least one letter and
// one digit.
func validLoginPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < 8 || n > 24 {
		return false
	}
	letter, digit := classify(password)
	return letter && digit
}

// validNewPassword accepts at least 8 ASCII letters and digits, with at least
// one of each.
func validNewPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	for _, c := range password {
		if !isASCIILetter(c) && !isDigit(c) {
			return false
		}
	}
	letter, digit := classify(password)
	return letter && digit
}

func classify(s string) (letter, digit bool) {
	for _, c := range s {
		switch {
		case isASCIILetter(c):
			letter = true
		case isDigit(c):
			digit = true
		case c == '\n':
			return false, false
		}
	}
	return letter, digit
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
