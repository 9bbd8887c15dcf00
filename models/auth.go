package models

// AuthFamily tells which operation family produced an AuthResult.
type AuthFamily int

const (
	FamilyUnknown AuthFamily = iota
	FamilySignIn
	FamilySignUp
)

func (f AuthFamily) String() string {
	switch f {
	case FamilySignIn:
		return "sign_in"
	case FamilySignUp:
		return "sign_up"
	default:
		return "unknown"
	}
}

// SignInStep is the next-step code of sign-in and confirm-sign-in results.
type SignInStep string

const (
	SignInDone                      SignInStep = "DONE"
	SignInConfirmSignUp             SignInStep = "CONFIRM_SIGN_UP"
	SignInResetPassword             SignInStep = "RESET_PASSWORD"
	SignInNewPasswordRequired       SignInStep = "CONFIRM_SIGN_IN_WITH_NEW_PASSWORD_REQUIRED"
	SignInContinueEmailSetup        SignInStep = "CONTINUE_SIGN_IN_WITH_EMAIL_SETUP"
	SignInContinueFirstFactor       SignInStep = "CONTINUE_SIGN_IN_WITH_FIRST_FACTOR_SELECTION"
	SignInConfirmWithPassword       SignInStep = "CONFIRM_SIGN_IN_WITH_PASSWORD"
	SignInContinueMFASetupSelection SignInStep = "CONTINUE_SIGN_IN_WITH_MFA_SETUP_SELECTION"
	SignInContinueTOTPSetup         SignInStep = "CONTINUE_SIGN_IN_WITH_TOTP_SETUP"
	SignInConfirmCustomChallenge    SignInStep = "CONFIRM_SIGN_IN_WITH_CUSTOM_CHALLENGE"
	SignInContinueMFASelection      SignInStep = "CONTINUE_SIGN_IN_WITH_MFA_SELECTION"
	SignInConfirmSMSCode            SignInStep = "CONFIRM_SIGN_IN_WITH_SMS_CODE"
	SignInConfirmTOTPCode           SignInStep = "CONFIRM_SIGN_IN_WITH_TOTP_CODE"
	SignInConfirmEmailCode          SignInStep = "CONFIRM_SIGN_IN_WITH_EMAIL_CODE"
)

// SignUpStep is the next-step code of sign-up and confirm-sign-up results.
type SignUpStep string

const (
	SignUpDone              SignUpStep = "DONE"
	SignUpConfirmSignUp     SignUpStep = "CONFIRM_SIGN_UP"
	SignUpCompleteAutoLogin SignUpStep = "COMPLETE_AUTO_SIGN_IN"
)

// Session holds the tokens issued once a sign-in completes.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// SignupMetadata is the pending income/savings data collected at sign-up and
// consumed when the profile record is created.
type SignupMetadata struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Income      string `json:"income,omitempty"`
	SavingsGoal string `json:"savings_goal,omitempty"`
}

// AuthResult is the tagged result of sign-in, sign-up, confirm-sign-in and
// confirm-sign-up. Only the step field matching Family is meaningful.
type AuthResult struct {
	Family          AuthFamily
	SignInStep      SignInStep
	SignUpStep      SignUpStep
	UserID          string
	Email           string
	Session         *Session
	ChallengeToken  string
	AutoSignInToken string
	Metadata        *SignupMetadata
}

func NewSignInResult(step SignInStep) *AuthResult {
	return &AuthResult{Family: FamilySignIn, SignInStep: step}
}

func NewSignUpResult(step SignUpStep) *AuthResult {
	return &AuthResult{Family: FamilySignUp, SignUpStep: step}
}

// Step returns the step code of whichever family the result belongs to.
func (r *AuthResult) Step() string {
	switch r.Family {
	case FamilySignIn:
		return string(r.SignInStep)
	case FamilySignUp:
		return string(r.SignUpStep)
	}
	return ""
}

// Completed reports whether the result ends the auth flow with a session.
func (r *AuthResult) Completed() bool {
	return (r.Family == FamilySignIn && r.SignInStep == SignInDone) ||
		(r.Family == FamilySignUp && r.SignUpStep == SignUpDone)
}

// AuthFlow is threaded through sign-up, confirmation and routing.
type AuthFlow struct {
	User    FlowUser
	Pending *SignupMetadata
}

// ConfirmedUser is handed to the post-confirmation hook.
type ConfirmedUser struct {
	UserID   string          `json:"user_id"`
	Email    string          `json:"email"`
	Metadata *SignupMetadata `json:"metadata,omitempty"`
}

// AuthClaims is what the auth middleware extracts from a bearer token.
type AuthClaims struct {
	UserID string
	Email  string
}
