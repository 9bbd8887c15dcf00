package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pocketplan/budget-api/models"
)

type fakeProvider struct {
	signUpResult  *models.AuthResult
	confirmResult *models.AuthResult
	currentErr    error

	signUpCalls   int
	gotMetadata   *models.SignupMetadata
	resetRequests []string
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	if password != "correct horse" {
		return nil, ErrInvalidCredentials
	}
	return models.NewSignInResult(models.SignInDone), nil
}

func (f *fakeProvider) SignUp(ctx context.Context, user models.FlowUser, password string, metadata *models.SignupMetadata) (*models.AuthResult, error) {
	f.signUpCalls++
	f.gotMetadata = metadata
	return f.signUpResult, nil
}

func (f *fakeProvider) ConfirmSignIn(ctx context.Context, challengeToken, response string) (*models.AuthResult, error) {
	return nil, ErrUnsupportedAuthOp
}

func (f *fakeProvider) ConfirmSignUp(ctx context.Context, username, code string) (*models.AuthResult, error) {
	if code != "123456" {
		return nil, ErrInvalidCode
	}
	return f.confirmResult, nil
}

func (f *fakeProvider) AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error) {
	return models.NewSignInResult(models.SignInDone), nil
}

func (f *fakeProvider) ResendSignUpCode(ctx context.Context, username string) error { return nil }

func (f *fakeProvider) ResetPassword(ctx context.Context, email string) error {
	f.resetRequests = append(f.resetRequests, email)
	return nil
}

func (f *fakeProvider) ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error {
	return nil
}

func (f *fakeProvider) SignOut(ctx context.Context, accessToken, refreshToken string) error { return nil }

func (f *fakeProvider) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return &models.User{ID: "user-1"}, nil
}

func (f *fakeProvider) VerifyAccessToken(ctx context.Context, token string) (*models.AuthClaims, error) {
	return &models.AuthClaims{UserID: "user-1"}, nil
}

type recordingHook struct {
	users []models.ConfirmedUser
	err   error
}

func (h *recordingHook) OnConfirmed(ctx context.Context, user models.ConfirmedUser) error {
	h.users = append(h.users, user)
	return h.err
}

func validSignUp() models.SignUpRequest {
	return models.SignUpRequest{
		FirstName:       "Ana",
		LastName:        "Lopez",
		Email:           "ana@example.com",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
		Income:          "4000",
		SavingsGoal:     "500",
	}
}

func TestAuthService_SignUpValidationStopsEarly(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewAuthService(provider, &recordingHook{})

	req := validSignUp()
	req.ConfirmPassword = "nope"
	_, err := svc.SignUp(context.Background(), req, &models.AuthFlow{})

	var validation *ValidationError
	if !errors.As(err, &validation) || validation.Message != "Passwords do not match." {
		t.Fatalf("SignUp() error = %v, want validation error", err)
	}
	if provider.signUpCalls != 0 {
		t.Errorf("provider called %d times, want 0", provider.signUpCalls)
	}
}

func TestAuthService_SignUpThreadsPendingMetadata(t *testing.T) {
	res := models.NewSignUpResult(models.SignUpConfirmSignUp)
	provider := &fakeProvider{signUpResult: res}
	hook := &recordingHook{}
	svc := NewAuthService(provider, hook)

	flow := &models.AuthFlow{}
	if _, err := svc.SignUp(context.Background(), validSignUp(), flow); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if flow.Pending == nil || flow.Pending.Income != "4000" {
		t.Errorf("flow.Pending = %+v", flow.Pending)
	}
	if provider.gotMetadata != flow.Pending {
		t.Error("provider did not receive the flow's pending metadata")
	}
	if flow.User.Email != "ana@example.com" {
		t.Errorf("flow.User = %+v", flow.User)
	}
	if len(hook.users) != 0 {
		t.Errorf("hook fired %d times before confirmation", len(hook.users))
	}
}

func TestAuthService_SignUpDoneFiresHook(t *testing.T) {
	res := models.NewSignUpResult(models.SignUpDone)
	res.UserID = "user-1"
	res.Email = "ana@example.com"
	hook := &recordingHook{}
	svc := NewAuthService(&fakeProvider{signUpResult: res}, hook)

	if _, err := svc.SignUp(context.Background(), validSignUp(), &models.AuthFlow{}); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if len(hook.users) != 1 {
		t.Fatalf("hook fired %d times, want 1", len(hook.users))
	}
	if got := hook.users[0]; got.UserID != "user-1" || got.Metadata == nil || got.Metadata.SavingsGoal != "500" {
		t.Errorf("confirmed user = %+v", got)
	}
}

func TestAuthService_ConfirmSignUp(t *testing.T) {
	res := models.NewSignUpResult(models.SignUpCompleteAutoLogin)
	res.UserID = "user-1"
	res.Metadata = &models.SignupMetadata{FirstName: "Ana", LastName: "Lopez", Income: "4000"}
	hook := &recordingHook{err: errors.New("store down")}
	svc := NewAuthService(&fakeProvider{confirmResult: res}, hook)

	flow := &models.AuthFlow{}
	got, err := svc.ConfirmSignUp(context.Background(), "ana@example.com", "123456", flow)
	if err != nil {
		t.Fatalf("ConfirmSignUp() error = %v, hook failures must not fail confirmation", err)
	}
	if got != res {
		t.Error("ConfirmSignUp() did not return the provider result")
	}
	if flow.User.FirstName != "Ana" || flow.User.Email != "ana@example.com" {
		t.Errorf("flow.User = %+v", flow.User)
	}
	if len(hook.users) != 1 || hook.users[0].Metadata.Income != "4000" {
		t.Errorf("hook users = %+v", hook.users)
	}
}

func TestAuthService_ConfirmSignUpBadCode(t *testing.T) {
	hook := &recordingHook{}
	svc := NewAuthService(&fakeProvider{}, hook)

	if _, err := svc.ConfirmSignUp(context.Background(), "ana@example.com", "000000", &models.AuthFlow{}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("ConfirmSignUp() error = %v, want ErrInvalidCode", err)
	}
	if len(hook.users) != 0 {
		t.Error("hook fired for a failed confirmation")
	}
}

func TestAuthService_SignIn(t *testing.T) {
	svc := NewAuthService(&fakeProvider{}, nil)

	flow := &models.AuthFlow{}
	res, err := svc.SignIn(context.Background(), "ana@example.com", "correct horse", flow)
	if err != nil || !res.Completed() {
		t.Fatalf("SignIn() = %+v, %v", res, err)
	}
	if flow.User.Email != "ana@example.com" {
		t.Errorf("flow.User.Email = %q", flow.User.Email)
	}

	if _, err := svc.SignIn(context.Background(), "ana@example.com", "wrong", &models.AuthFlow{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_ResetPasswordValidatesEmail(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewAuthService(provider, nil)

	var validation *ValidationError
	if err := svc.ResetPassword(context.Background(), "not-an-email"); !errors.As(err, &validation) {
		t.Errorf("ResetPassword() error = %v, want validation error", err)
	}
	if err := svc.ResetPassword(context.Background(), "ana@example.com"); err != nil {
		t.Errorf("ResetPassword() error = %v", err)
	}
	if len(provider.resetRequests) != 1 {
		t.Errorf("provider saw %d reset requests, want 1", len(provider.resetRequests))
	}
}

func TestAuthService_ConfirmResetPasswordValidates(t *testing.T) {
	svc := NewAuthService(&fakeProvider{}, nil)

	var validation *ValidationError
	if err := svc.ConfirmResetPassword(context.Background(), "ana@example.com", "123456", "short"); !errors.As(err, &validation) {
		t.Errorf("ConfirmResetPassword() error = %v, want validation error", err)
	}
}

func TestAuthService_CheckIsAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		token string
		err   error
		want  bool
	}{
		{"no token", "", nil, false},
		{"valid session", "tok", nil, true},
		{"signed out", "tok", ErrNotAuthenticated, false},
		{"provider failure", "tok", errors.New("timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(&fakeProvider{currentErr: tt.err}, nil)
			if got := svc.CheckIsAuthenticated(context.Background(), tt.token); got != tt.want {
				t.Errorf("CheckIsAuthenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}
