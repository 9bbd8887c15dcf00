package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	sessionTTL          = 7 * 24 * time.Hour
	newPasswordTokenTTL = 10 * time.Minute
	autoSignInTokenTTL  = 3 * time.Minute
)

// LocalAuthenticator keeps accounts in the users and sessions tables.
// Confirmation and reset codes are mailed; access tokens are JWTs.
type LocalAuthenticator struct {
	db     *sql.DB
	tokens *utils.TokenIssuer
	mailer CodeMailer
	now    func() time.Time
}

func NewLocalAuthenticator(db *sql.DB, tokens *utils.TokenIssuer, mailer CodeMailer) *LocalAuthenticator {
	return &LocalAuthenticator{db: db, tokens: tokens, mailer: mailer, now: time.Now}
}

// account is a users row plus the columns never exposed on models.User.
type account struct {
	models.User
	ResetSecret sql.NullString
	Metadata    []byte
}

func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	acc, err := a.findByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	step := signInStep(&acc.User)
	switch step {
	case models.SignInDone:
		return a.signedIn(ctx, acc)
	case models.SignInConfirmSignUp:
		if err := a.sendConfirmationCode(ctx, acc); err != nil {
			utils.Logger().Error("failed to resend confirmation code", zap.Error(err))
		}
	case models.SignInNewPasswordRequired:
		token, err := a.tokens.GeneratePurposeToken(acc.ID, utils.PurposeNewPassword, newPasswordTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to generate challenge token: %w", err)
		}
		res := a.result(models.NewSignInResult(step), acc)
		res.ChallengeToken = token
		return res, nil
	}
	return a.result(models.NewSignInResult(step), acc), nil
}

// signInStep maps account state to the next sign-in step. An unverified
// email comes first, then a pending reset, TOTP, and a forced change.
func signInStep(u *models.User) models.SignInStep {
	switch {
	case !u.EmailVerified:
		return models.SignInConfirmSignUp
	case u.PasswordResetRequired:
		return models.SignInResetPassword
	case u.TOTPEnabled:
		return models.SignInConfirmTOTPCode
	case u.ForcePasswordChange:
		return models.SignInNewPasswordRequired
	}
	return models.SignInDone
}

func (a *LocalAuthenticator) SignUp(ctx context.Context, user models.FlowUser, password string, metadata *models.SignupMetadata) (*models.AuthResult, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	secret, err := utils.GenerateCodeSecret(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code secret: %w", err)
	}
	var md []byte
	if metadata != nil {
		if md, err = json.Marshal(metadata); err != nil {
			return nil, err
		}
	}

	acc := &account{User: models.User{
		ID:                 uuid.New().String(),
		Email:              strings.ToLower(strings.TrimSpace(user.Email)),
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		PasswordHash:       hash,
		VerificationSecret: secret,
	}}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, verification_secret, signup_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`, acc.ID, acc.Email, acc.FirstName, acc.LastName, hash, secret, nullJSON(md))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := a.sendConfirmationCode(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to send confirmation code: %w", err)
	}
	return a.result(models.NewSignUpResult(models.SignUpConfirmSignUp), acc), nil
}

// ConfirmSignIn answers the new password challenge.
func (a *LocalAuthenticator) ConfirmSignIn(ctx context.Context, challengeToken, response string) (*models.AuthResult, error) {
	claims, err := a.tokens.Parse(challengeToken, utils.PurposeNewPassword)
	if err != nil {
		return nil, err
	}
	if v := ValidateNewPassword(response, response); !v.IsValid {
		return nil, &ValidationError{Message: v.Message}
	}
	hash, err := utils.HashPassword(response)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, force_password_change = FALSE, updated_at = NOW()
		WHERE id = $1
	`, claims.Subject, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	acc, err := a.findByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return a.signedIn(ctx, acc)
}

// ConfirmSignUp marks the email verified and offers an automatic sign-in.
// The metadata stored at sign-up is returned once and then cleared.
func (a *LocalAuthenticator) ConfirmSignUp(ctx context.Context, username, code string) (*models.AuthResult, error) {
	acc, err := a.findByEmail(ctx, username)
	if err != nil {
		return nil, err
	}
	if acc.EmailVerified {
		return nil, ErrAlreadyConfirmed
	}
	if !utils.VerifyCode(acc.VerificationSecret, strings.TrimSpace(code), a.now()) {
		return nil, ErrInvalidCode
	}

	_, err = a.db.ExecContext(ctx, `
		UPDATE users SET email_verified = TRUE, signup_metadata = NULL, updated_at = NOW()
		WHERE id = $1
	`, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm user: %w", err)
	}

	token, err := a.tokens.GeneratePurposeToken(acc.ID, utils.PurposeAutoSignIn, autoSignInTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auto sign-in token: %w", err)
	}
	res := a.result(models.NewSignUpResult(models.SignUpCompleteAutoLogin), acc)
	res.AutoSignInToken = token
	if len(acc.Metadata) > 0 {
		var md models.SignupMetadata
		if err := json.Unmarshal(acc.Metadata, &md); err == nil {
			res.Metadata = &md
		}
	}
	return res, nil
}

func (a *LocalAuthenticator) AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error) {
	claims, err := a.tokens.Parse(token, utils.PurposeAutoSignIn)
	if err != nil {
		return nil, err
	}
	acc, err := a.findByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return a.signedIn(ctx, acc)
}

func (a *LocalAuthenticator) ResendSignUpCode(ctx context.Context, username string) error {
	acc, err := a.findByEmail(ctx, username)
	if err != nil {
		return err
	}
	if acc.EmailVerified {
		return ErrAlreadyConfirmed
	}
	return a.sendConfirmationCode(ctx, acc)
}

// ResetPassword mails a reset code. Unknown emails succeed silently.
func (a *LocalAuthenticator) ResetPassword(ctx context.Context, email string) error {
	acc, err := a.findByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	secret, err := utils.GenerateCodeSecret(acc.Email)
	if err != nil {
		return fmt.Errorf("failed to generate code secret: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, `
		UPDATE users SET reset_secret = $2, updated_at = NOW() WHERE id = $1
	`, acc.ID, secret); err != nil {
		return fmt.Errorf("failed to store reset secret: %w", err)
	}

	code, err := utils.GenerateCode(secret, a.now())
	if err != nil {
		return err
	}
	return a.mailer.SendResetCode(ctx, acc.Email, code)
}

// ConfirmResetPassword sets the new password and ends every session.
func (a *LocalAuthenticator) ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error {
	acc, err := a.findByEmail(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}
	if !acc.ResetSecret.Valid || !utils.VerifyCode(acc.ResetSecret.String, strings.TrimSpace(code), a.now()) {
		return ErrInvalidCode
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return utils.WithTransaction(ctx, a.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET password_hash = $2, reset_secret = NULL, password_reset_required = FALSE, updated_at = NOW()
			WHERE id = $1
		`, acc.ID, hash); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, acc.ID)
		return err
	})
}

// SignOut removes the session of refreshToken, or every session of the
// access token's user when no refresh token is given.
func (a *LocalAuthenticator) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	if refreshToken != "" {
		_, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
		return err
	}
	claims, err := a.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, claims.UserID)
	return err
}

func (a *LocalAuthenticator) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := a.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	acc, err := a.findByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return &acc.User, nil
}

func (a *LocalAuthenticator) VerifyAccessToken(ctx context.Context, token string) (*models.AuthClaims, error) {
	claims, err := a.tokens.Parse(token, utils.PurposeAccess)
	if err != nil {
		return nil, err
	}
	return &models.AuthClaims{UserID: claims.Subject, Email: claims.Email}, nil
}

// CleanExpiredSessions deletes sessions past their expiry.
func (a *LocalAuthenticator) CleanExpiredSessions(ctx context.Context) (int64, error) {
	result, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (a *LocalAuthenticator) signedIn(ctx context.Context, acc *account) (*models.AuthResult, error) {
	accessToken, err := a.tokens.GenerateAccessToken(acc.ID, acc.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
	`, acc.ID, refreshToken, a.now().Add(sessionTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	res := a.result(models.NewSignInResult(models.SignInDone), acc)
	res.Session = &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(a.tokens.AccessTTL().Seconds()),
		TokenType:    "Bearer",
	}
	return res, nil
}

func (a *LocalAuthenticator) result(res *models.AuthResult, acc *account) *models.AuthResult {
	res.UserID = acc.ID
	res.Email = acc.Email
	return res
}

func (a *LocalAuthenticator) sendConfirmationCode(ctx context.Context, acc *account) error {
	code, err := utils.GenerateCode(acc.VerificationSecret, a.now())
	if err != nil {
		return err
	}
	return a.mailer.SendConfirmationCode(ctx, acc.Email, code)
}

const accountColumns = `
	id, email, first_name, last_name, password_hash, verification_secret, reset_secret,
	totp_enabled, email_verified, force_password_change, password_reset_required,
	signup_metadata, created_at, updated_at`

func (a *LocalAuthenticator) findByEmail(ctx context.Context, email string) (*account, error) {
	return a.scanAccount(a.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
}

func (a *LocalAuthenticator) findByID(ctx context.Context, id string) (*account, error) {
	return a.scanAccount(a.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id))
}

func (a *LocalAuthenticator) scanAccount(row *sql.Row) (*account, error) {
	var acc account
	err := row.Scan(&acc.ID, &acc.Email, &acc.FirstName, &acc.LastName, &acc.PasswordHash,
		&acc.VerificationSecret, &acc.ResetSecret, &acc.TOTPEnabled, &acc.EmailVerified,
		&acc.ForcePasswordChange, &acc.PasswordResetRequired, &acc.Metadata,
		&acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &acc, nil
}

func nullJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
