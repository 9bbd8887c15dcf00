package models

import "time"

// ============================================================================
// USER MODEL
// ============================================================================

type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	FirstName             string    `json:"first_name,omitempty"`
	LastName              string    `json:"last_name,omitempty"`
	PasswordHash          string    `json:"-"` // Never expose in JSON
	VerificationSecret    string    `json:"-"`
	TOTPEnabled           bool      `json:"totp_enabled"`
	EmailVerified         bool      `json:"email_verified"`
	ForcePasswordChange   bool      `json:"-"`
	PasswordResetRequired bool      `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// FlowUser is the user data that started an auth flow. It is forwarded to the
// dashboard screen, so it never carries the password.
type FlowUser struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ============================================================================
// AUTHENTICATION REQUESTS
// ============================================================================

type SignUpRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Income          string `json:"income"`
	SavingsGoal     string `json:"savings_goal"`
}

// Metadata returns the figures that must survive until the profile exists.
func (r SignUpRequest) Metadata() *SignupMetadata {
	return &SignupMetadata{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Income:      r.Income,
		SavingsGoal: r.SavingsGoal,
	}
}

func (r SignUpRequest) FlowUser() FlowUser {
	return FlowUser{Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ConfirmSignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type ConfirmSignInRequest struct {
	ChallengeToken    string `json:"challenge_token" binding:"required"`
	ChallengeResponse string `json:"challenge_response" binding:"required"`
}

type ResendCodeRequest struct {
	Username string `json:"username" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ConfirmResetPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidationResult is the success flag returned to screens instead of an error.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}
