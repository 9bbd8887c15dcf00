package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/services"

	"github.com/gin-gonic/gin"
)

// SessionCloser ends a user's live connections.
type SessionCloser interface {
	CloseUser(userID string)
}

type AuthHandler struct {
	Auth   *services.AuthService
	Closer SessionCloser
}

func NewAuthHandler(auth *services.AuthService, closer SessionCloser) *AuthHandler {
	return &AuthHandler{Auth: auth, Closer: closer}
}

// sessionCapture remembers the session of the automatic sign-in that the
// router performs during confirmation.
type sessionCapture struct {
	auth    services.AutoSignInner
	session *models.Session
}

func (s *sessionCapture) AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error) {
	res, err := s.auth.AutoSignIn(ctx, token)
	if err == nil && res.Session != nil {
		s.session = res.Session
	}
	return res, err
}

// route runs the auth router and writes the response. Unsupported and
// unknown steps are returned as 422 with the router's message.
func (h *AuthHandler) route(c *gin.Context, res *models.AuthResult, flow *models.AuthFlow) {
	capture := &sessionCapture{auth: h.Auth}
	nav := &services.NavigationRecorder{}
	if err := services.NewAuthRouter(capture).Route(c.Request.Context(), res, flow, nav); err != nil {
		var step *services.StepError
		if errors.As(err, &step) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "step": step.Step})
			return
		}
		respondError(c, err)
		return
	}

	extra := gin.H{}
	session := res.Session
	if capture.session != nil {
		session = capture.session
	}
	if session != nil {
		extra["session"] = session
	}
	if res.UserID != "" {
		extra["user_id"] = res.UserID
	}
	respondNext(c, http.StatusOK, nav, extra)
}

// failed sends the app to the invalid login screen with the error shown.
func (h *AuthHandler) failed(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
		return
	}
	status := statusFor(err)
	msg := errorMessage(err, status)
	nav := &services.NavigationRecorder{}
	nav.GoToInvalidLogin(models.NavParams{"errorMessage": msg})
	respondNext(c, status, nav, gin.H{"error": msg})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow := &models.AuthFlow{}
	res, err := h.Auth.SignUp(c.Request.Context(), req, flow)
	if err != nil {
		h.failed(c, err)
		return
	}
	h.route(c, res, flow)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow := &models.AuthFlow{}
	res, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password, flow)
	if err != nil {
		h.failed(c, err)
		return
	}
	h.route(c, res, flow)
}

func (h *AuthHandler) ConfirmSignUp(c *gin.Context) {
	var req models.ConfirmSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow := &models.AuthFlow{}
	res, err := h.Auth.ConfirmSignUp(c.Request.Context(), req.Username, req.Code, flow)
	if err != nil {
		respondError(c, err)
		return
	}
	h.route(c, res, flow)
}

func (h *AuthHandler) ConfirmSignIn(c *gin.Context) {
	var req models.ConfirmSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Auth.ConfirmSignIn(c.Request.Context(), req.ChallengeToken, req.ChallengeResponse)
	if err != nil {
		respondError(c, err)
		return
	}
	h.route(c, res, &models.AuthFlow{User: models.FlowUser{Email: res.Email}})
}

func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req models.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Auth.ResendSignUpCode(c.Request.Context(), req.Username); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A new code has been sent to your email."})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account exists for that email, a reset code has been sent."})
}

func (h *AuthHandler) ConfirmResetPassword(c *gin.Context) {
	var req models.ConfirmResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Auth.ConfirmResetPassword(c.Request.Context(), req.Username, req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	nav := &services.NavigationRecorder{}
	nav.GoToLogin()
	respondNext(c, http.StatusOK, nav, gin.H{"message": "Password has been reset."})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	userID := middleware.GetUserID(c)
	if err := h.Auth.SignOut(c.Request.Context(), middleware.GetAccessToken(c), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	if h.Closer != nil {
		h.Closer.CloseUser(userID)
	}
	nav := &services.NavigationRecorder{}
	nav.GoToLogin()
	respondNext(c, http.StatusOK, nav, gin.H{"message": "Signed out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Auth.CurrentUser(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Status reports whether the bearer token, if any, belongs to a signed-in user.
func (h *AuthHandler) Status(c *gin.Context) {
	token := extractBearer(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": h.Auth.CheckIsAuthenticated(c.Request.Context(), token)})
}

func extractBearer(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
