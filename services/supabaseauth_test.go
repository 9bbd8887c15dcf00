package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pocketplan/budget-api/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

var _ Authenticator = (*SupabaseAuthenticator)(nil)

// otpRecorder is a GoTrue client that only answers one-time code requests.
type otpRecorder struct {
	gotrue.Client
	requests []types.OTPRequest
	err      error
}

func (c *otpRecorder) OTP(req types.OTPRequest) error {
	c.requests = append(c.requests, req)
	return c.err
}

func TestSupabaseAuthenticator_ResendSignUpCode(t *testing.T) {
	client := &otpRecorder{}
	a := NewSupabaseAuthenticator(client, "secret")

	if err := a.ResendSignUpCode(context.Background(), "ana@example.com"); err != nil {
		t.Fatalf("ResendSignUpCode() error = %v", err)
	}
	if len(client.requests) != 1 {
		t.Fatalf("sent %d requests, want 1", len(client.requests))
	}
	if req := client.requests[0]; req.Email != "ana@example.com" || req.CreateUser {
		t.Errorf("request = %+v", req)
	}

	client.err = errors.New("rate limited")
	if err := a.ResendSignUpCode(context.Background(), "ana@example.com"); err == nil {
		t.Error("ResendSignUpCode() hid the client error")
	}
}

func supabaseToken(t *testing.T, secret, subject, audience string) string {
	t.Helper()
	claims := supabaseClaims{
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestSupabaseAuthenticator_VerifyAccessToken(t *testing.T) {
	a := NewSupabaseAuthenticator(nil, "project-secret")

	claims, err := a.VerifyAccessToken(context.Background(), supabaseToken(t, "project-secret", "user-1", "authenticated"))
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", supabaseToken(t, "other-secret", "user-1", "authenticated")},
		{"wrong audience", supabaseToken(t, "project-secret", "user-1", "anon")},
		{"no subject", supabaseToken(t, "project-secret", "", "authenticated")},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.VerifyAccessToken(context.Background(), tt.token); !errors.Is(err, utils.ErrInvalidToken) {
				t.Errorf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestMetadataFrom(t *testing.T) {
	if md := metadataFrom(nil); md != nil {
		t.Errorf("metadataFrom(nil) = %+v, want nil", md)
	}

	md := metadataFrom(map[string]interface{}{
		"first_name": "Ana",
		"income":     "4,250.50",
		"age":        31,
	})
	if md.FirstName != "Ana" || md.Income != "4,250.50" || md.LastName != "" {
		t.Errorf("metadataFrom() = %+v", md)
	}
}
