package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("kitchen"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return New(Config{Secret: "secret", PasswordHash: string(hash), TTL: time.Hour})
}

func TestLoginAndValidate(t *testing.T) {
	a := newTestAuthenticator(t)

	token, expires, err := a.Login("kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("token already expired at %s", expires)
	}

	claims, err := a.Validate(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != SubjectStaff {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newTestAuthenticator(t)
	if _, _, err := a.Login("nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	a := newTestAuthenticator(t)
	token, _, err := a.Login("kitchen")
	if err != nil {
		t.Fatal(err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := a.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}

	other := New(Config{Secret: "other", PasswordHash: "x"})
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected foreign token to be rejected, got %v", err)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	if _, _, err := New(Config{}).Login("x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
