package core

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundtrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	user := User{ID: 42, Email: "a@b.com", Name: "A"}

	raw, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := svc.Verify(raw)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.Name != user.Name {
		t.Fatalf("claims mismatch: got %+v", claims)
	}
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), -time.Minute)
	raw, err := svc.Issue(User{ID: 1, Email: "a@b.com", Name: "A"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := svc.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-one"), time.Hour)
	verifier := NewTokenService([]byte("secret-two"), time.Hour)

	raw, err := issuer.Issue(User{ID: 1, Email: "a@b.com", Name: "A"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken under different secret, got %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		if _, err := svc.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}
