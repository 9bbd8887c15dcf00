package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
	tokenKey     = "access_token"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*models.AuthClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's id for GetUserID.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.Request)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid token"})
			c.Abort()
			return
		}

		claims, err := verifier.VerifyAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			utils.Logger().Debug("rejected access token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// GetAccessToken returns the bearer token the request was authorized with.
func GetAccessToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// extractToken reads the Authorization header. Websocket clients cannot set
// headers, so a token query parameter is accepted as well.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get("token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
