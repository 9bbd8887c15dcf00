package models

type Screen string

const (
	ScreenLogin           Screen = "login"
	ScreenSignUp          Screen = "sign_up"
	ScreenDashboard       Screen = "dashboard"
	ScreenInvalidLogin    Screen = "invalid_login"
	ScreenResetPassword   Screen = "reset_password"
	ScreenAccountSettings Screen = "account_settings"
	ScreenConfirm         Screen = "confirm"
	ScreenBack            Screen = "back"
)

// ConfirmType selects what the confirmation screen asks for.
type ConfirmType string

const (
	ConfirmNewPasswordRequired ConfirmType = "new_password_required"
	ConfirmSignUpCode          ConfirmType = "sign_up_code"
	ConfirmOther               ConfirmType = "other"
)

// NavParams is forwarded verbatim to the destination screen.
type NavParams map[string]any

type Navigation struct {
	Screen Screen    `json:"screen"`
	Params NavParams `json:"params,omitempty"`
}
