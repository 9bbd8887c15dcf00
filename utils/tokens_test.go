package utils

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef", "pocketplan", time.Hour)

	token, err := issuer.GenerateAccessToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := issuer.Parse(token, PurposeAccess)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ana@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenIssuer_PurposeIsChecked(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef", "pocketplan", time.Hour)

	token, err := issuer.GeneratePurposeToken("user-1", PurposeAutoSignIn, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Parse(token, PurposeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(access) error = %v, want ErrInvalidToken", err)
	}
	if _, err := issuer.Parse(token, PurposeAutoSignIn); err != nil {
		t.Errorf("Parse(auto_sign_in) error = %v", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef", "pocketplan", time.Minute)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return start }

	token, err := issuer.GenerateAccessToken("user-1", "")
	if err != nil {
		t.Fatal(err)
	}

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := issuer.Parse(token, PurposeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	a := NewTokenIssuer("0123456789abcdef0123456789abcdef", "pocketplan", time.Hour)
	b := NewTokenIssuer("fedcba9876543210fedcba9876543210", "pocketplan", time.Hour)

	token, _ := a.GenerateAccessToken("user-1", "")
	if _, err := b.Parse(token, PurposeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	a, err := GenerateRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateRefreshToken()
	if len(a) != 64 || a == b {
		t.Errorf("refresh tokens %q and %q", a, b)
	}
}
