package services

import (
	"regexp"
	"strings"

	"github.com/pocketplan/budget-api/models"
)

var (
	signUpEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	resetEmailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
)

const minPasswordLength = 8

// ValidateSignUp checks the sign-up form. The first failing rule decides the message.
func ValidateSignUp(req models.SignUpRequest) models.ValidationResult {
	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return invalid("Please enter your first name.")
	case strings.TrimSpace(req.LastName) == "":
		return invalid("Please enter your last name.")
	case !signUpEmailPattern.MatchString(req.Email):
		return invalid("Please enter a valid email address.")
	case len(strings.TrimSpace(req.Password)) < minPasswordLength:
		return invalid("Password must be at least 8 characters long.")
	case req.Password != req.ConfirmPassword:
		return invalid("Passwords do not match.")
	}
	return models.ValidationResult{IsValid: true}
}

// ValidateResetEmail is the looser check used on the reset password screen.
func ValidateResetEmail(email string) models.ValidationResult {
	if !resetEmailPattern.MatchString(email) {
		return invalid("Please enter a valid email address.")
	}
	return models.ValidationResult{IsValid: true}
}

// ValidateNewPassword applies the sign-up password rules to a replacement password.
func ValidateNewPassword(password, confirm string) models.ValidationResult {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return invalid("Password must be at least 8 characters long.")
	}
	if password != confirm {
		return invalid("Passwords do not match.")
	}
	return models.ValidationResult{IsValid: true}
}

func invalid(msg string) models.ValidationResult {
	return models.ValidationResult{IsValid: false, Message: msg}
}
