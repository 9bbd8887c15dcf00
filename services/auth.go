package services

import (
	"context"
	"errors"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyConfirmed   = errors.New("user already confirmed")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUnsupportedAuthOp  = errors.New("operation not supported by this auth provider")
)

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Authenticator is the auth provider. Every sign-in or sign-up style call
// returns a tagged AuthResult; the router decides what the app shows next.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.AuthResult, error)
	SignUp(ctx context.Context, user models.FlowUser, password string, metadata *models.SignupMetadata) (*models.AuthResult, error)
	ConfirmSignIn(ctx context.Context, challengeToken, response string) (*models.AuthResult, error)
	ConfirmSignUp(ctx context.Context, username, code string) (*models.AuthResult, error)
	AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error)
	ResendSignUpCode(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, email string) error
	ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	VerifyAccessToken(ctx context.Context, token string) (*models.AuthClaims, error)
}

// PostConfirmationHook runs once a user's sign-up is confirmed.
type PostConfirmationHook interface {
	OnConfirmed(ctx context.Context, user models.ConfirmedUser) error
}

// AuthService validates input, calls the provider and fires the
// post-confirmation hook.
type AuthService struct {
	provider Authenticator
	hook     PostConfirmationHook
}

func NewAuthService(provider Authenticator, hook PostConfirmationHook) *AuthService {
	return &AuthService{provider: provider, hook: hook}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string, flow *models.AuthFlow) (*models.AuthResult, error) {
	flow.User.Email = email
	res, err := s.provider.SignIn(ctx, email, password)
	utils.LogAuthAction("sign_in", email, err == nil)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SignUp starts a flow. The pending metadata is recorded on flow and handed
// to the provider, which returns it again at confirmation.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest, flow *models.AuthFlow) (*models.AuthResult, error) {
	if v := ValidateSignUp(req); !v.IsValid {
		return nil, &ValidationError{Message: v.Message}
	}
	flow.User = req.FlowUser()
	flow.Pending = req.Metadata()

	res, err := s.provider.SignUp(ctx, flow.User, req.Password, flow.Pending)
	utils.LogAuthAction("sign_up", req.Email, err == nil)
	if err != nil {
		return nil, err
	}
	if res.Family == models.FamilySignUp && res.SignUpStep == models.SignUpDone {
		s.confirmed(ctx, res, flow.Pending)
	}
	return res, nil
}

func (s *AuthService) ConfirmSignIn(ctx context.Context, challengeToken, response string) (*models.AuthResult, error) {
	res, err := s.provider.ConfirmSignIn(ctx, challengeToken, response)
	if err != nil {
		utils.LogAuthAction("confirm_sign_in", "", false, zap.Error(err))
		return nil, err
	}
	return res, nil
}

// ConfirmSignUp verifies the code and creates the profile from the metadata
// the provider kept since sign-up.
func (s *AuthService) ConfirmSignUp(ctx context.Context, username, code string, flow *models.AuthFlow) (*models.AuthResult, error) {
	flow.User.Email = username
	res, err := s.provider.ConfirmSignUp(ctx, username, code)
	utils.LogAuthAction("confirm_sign_up", username, err == nil)
	if err != nil {
		return nil, err
	}
	if res.Metadata != nil {
		flow.Pending = res.Metadata
		flow.User.FirstName = res.Metadata.FirstName
		flow.User.LastName = res.Metadata.LastName
	}
	s.confirmed(ctx, res, flow.Pending)
	return res, nil
}

func (s *AuthService) AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error) {
	return s.provider.AutoSignIn(ctx, token)
}

func (s *AuthService) ResendSignUpCode(ctx context.Context, username string) error {
	err := s.provider.ResendSignUpCode(ctx, username)
	utils.LogAuthAction("resend_code", username, err == nil)
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if v := ValidateResetEmail(email); !v.IsValid {
		return &ValidationError{Message: v.Message}
	}
	err := s.provider.ResetPassword(ctx, email)
	utils.LogAuthAction("reset_password", email, err == nil)
	return err
}

func (s *AuthService) ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error {
	if v := ValidateNewPassword(newPassword, newPassword); !v.IsValid {
		return &ValidationError{Message: v.Message}
	}
	err := s.provider.ConfirmResetPassword(ctx, username, code, newPassword)
	utils.LogAuthAction("confirm_reset_password", username, err == nil)
	return err
}

func (s *AuthService) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	return s.provider.SignOut(ctx, accessToken, refreshToken)
}

func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	return s.provider.CurrentUser(ctx, accessToken)
}

func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*models.AuthClaims, error) {
	return s.provider.VerifyAccessToken(ctx, token)
}

// CheckIsAuthenticated reports whether token belongs to a signed-in user.
// Provider failures are logged and count as signed out.
func (s *AuthService) CheckIsAuthenticated(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, err := s.provider.CurrentUser(ctx, token)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrNotAuthenticated) && !errors.Is(err, utils.ErrInvalidToken) {
		utils.Logger().Error("failed to check authentication", zap.Error(err))
	}
	return false
}

func (s *AuthService) confirmed(ctx context.Context, res *models.AuthResult, pending *models.SignupMetadata) {
	if s.hook == nil || res.UserID == "" {
		return
	}
	md := res.Metadata
	if md == nil {
		md = pending
	}
	user := models.ConfirmedUser{UserID: res.UserID, Email: res.Email, Metadata: md}
	if err := s.hook.OnConfirmed(ctx, user); err != nil {
		utils.Logger().Error("post-confirmation hook failed",
			zap.String("user_id", utils.MaskID(res.UserID)), zap.Error(err))
	}
}
