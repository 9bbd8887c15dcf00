package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// SupabaseAuthenticator delegates accounts to Supabase Auth (GoTrue). The
// sign-up metadata rides along as user data and comes back at confirmation.
type SupabaseAuthenticator struct {
	client    gotrue.Client
	jwtSecret []byte
}

func NewSupabaseAuthenticator(client gotrue.Client, jwtSecret string) *SupabaseAuthenticator {
	return &SupabaseAuthenticator{client: client, jwtSecret: []byte(jwtSecret)}
}

func (a *SupabaseAuthenticator) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	resp, err := a.client.SignInWithEmailPassword(email, password)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "email not confirmed") {
			res := models.NewSignInResult(models.SignInConfirmSignUp)
			res.Email = email
			return res, nil
		}
		if strings.Contains(msg, "invalid login credentials") {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("supabase sign-in: %w", err)
	}
	res := models.NewSignInResult(models.SignInDone)
	res.UserID = resp.User.ID.String()
	res.Email = resp.User.Email
	res.Session = sessionFrom(resp.Session)
	return res, nil
}

func (a *SupabaseAuthenticator) SignUp(ctx context.Context, user models.FlowUser, password string, metadata *models.SignupMetadata) (*models.AuthResult, error) {
	data := map[string]interface{}{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}
	if metadata != nil {
		data["income"] = metadata.Income
		data["savings_goal"] = metadata.SavingsGoal
	}

	resp, err := a.client.Signup(types.SignupRequest{
		Email:    user.Email,
		Password: password,
		Data:     data,
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already registered") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("supabase sign-up: %w", err)
	}

	// With autoconfirm on the response already carries a session.
	if resp.Session.AccessToken != "" {
		res := models.NewSignUpResult(models.SignUpDone)
		res.UserID = resp.Session.User.ID.String()
		res.Email = resp.Session.User.Email
		res.Session = sessionFrom(resp.Session)
		res.Metadata = metadata
		return res, nil
	}
	res := models.NewSignUpResult(models.SignUpConfirmSignUp)
	res.UserID = resp.User.ID.String()
	res.Email = user.Email
	return res, nil
}

func (a *SupabaseAuthenticator) ConfirmSignIn(ctx context.Context, challengeToken, response string) (*models.AuthResult, error) {
	return nil, ErrUnsupportedAuthOp
}

// ConfirmSignUp verifies the emailed OTP. Supabase signs the user in on
// verification, so the flow finishes without an auto sign-in step.
func (a *SupabaseAuthenticator) ConfirmSignUp(ctx context.Context, username, code string) (*models.AuthResult, error) {
	resp, err := a.client.VerifyForUser(types.VerifyForUserRequest{
		Type:  types.VerificationTypeSignup,
		Token: strings.TrimSpace(code),
		Email: username,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	res := models.NewSignUpResult(models.SignUpDone)
	res.UserID = resp.Session.User.ID.String()
	res.Email = resp.Session.User.Email
	res.Session = sessionFrom(resp.Session)
	res.Metadata = metadataFrom(resp.Session.User.UserMetadata)
	return res, nil
}

// AutoSignIn accepts an access token issued by a previous verification.
func (a *SupabaseAuthenticator) AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error) {
	resp, err := a.client.WithToken(token).GetUser()
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	res := models.NewSignInResult(models.SignInDone)
	res.UserID = resp.User.ID.String()
	res.Email = resp.User.Email
	res.Session = &models.Session{AccessToken: token, TokenType: "Bearer"}
	return res, nil
}

func (a *SupabaseAuthenticator) ResendSignUpCode(ctx context.Context, username string) error {
	if err := a.client.OTP(types.OTPRequest{Email: username, CreateUser: false}); err != nil {
		return fmt.Errorf("supabase resend code: %w", err)
	}
	return nil
}

func (a *SupabaseAuthenticator) ResetPassword(ctx context.Context, email string) error {
	if err := a.client.Recover(types.RecoverRequest{Email: email}); err != nil {
		return fmt.Errorf("supabase recover: %w", err)
	}
	return nil
}

func (a *SupabaseAuthenticator) ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error {
	resp, err := a.client.VerifyForUser(types.VerifyForUserRequest{
		Type:  types.VerificationTypeRecovery,
		Token: strings.TrimSpace(code),
		Email: username,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	if _, err := a.client.WithToken(resp.Session.AccessToken).UpdateUser(types.UpdateUserRequest{
		Password: &newPassword,
	}); err != nil {
		return fmt.Errorf("supabase update password: %w", err)
	}
	return nil
}

func (a *SupabaseAuthenticator) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	if err := a.client.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("supabase logout: %w", err)
	}
	return nil
}

func (a *SupabaseAuthenticator) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	if _, err := a.VerifyAccessToken(ctx, accessToken); err != nil {
		return nil, err
	}
	resp, err := a.client.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("supabase get user: %w", err)
	}
	md := metadataFrom(resp.User.UserMetadata)
	user := &models.User{
		ID:            resp.User.ID.String(),
		Email:         resp.User.Email,
		EmailVerified: resp.User.EmailConfirmedAt != nil,
		CreatedAt:     resp.User.CreatedAt,
		UpdatedAt:     resp.User.UpdatedAt,
	}
	if md != nil {
		user.FirstName, user.LastName = md.FirstName, md.LastName
	}
	return user, nil
}

type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// VerifyAccessToken checks a Supabase access token locally with the project
// JWT secret.
func (a *SupabaseAuthenticator) VerifyAccessToken(ctx context.Context, token string) (*models.AuthClaims, error) {
	claims := &supabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithAudience("authenticated"))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, utils.ErrInvalidToken
	}
	return &models.AuthClaims{UserID: claims.Subject, Email: claims.Email}, nil
}

func sessionFrom(s types.Session) *models.Session {
	return &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		TokenType:    s.TokenType,
	}
}

func metadataFrom(data map[string]interface{}) *models.SignupMetadata {
	if len(data) == 0 {
		return nil
	}
	str := func(key string) string {
		if v, ok := data[key].(string); ok {
			return v
		}
		return ""
	}
	return &models.SignupMetadata{
		FirstName:   str("first_name"),
		LastName:    str("last_name"),
		Income:      str("income"),
		SavingsGoal: str("savings_goal"),
	}
}
