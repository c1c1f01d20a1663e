package util

import (
	"errors"
	"testing"
	"time"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)

	token, err := signer.Issue(42, "owner@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := signer.Validate(token)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user 42, got %d", claims.UserID)
	}
	if claims.Email != "owner@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
}

func TestTokenSigner_WrongSecretRejected(t *testing.T) {
	signer := NewTokenSigner([]byte("secret-a"), time.Hour)
	other := NewTokenSigner([]byte("secret-b"), time.Hour)

	token, err := signer.Issue(1, "a@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenSigner_ExpiredRejected(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Nanosecond)

	token, err := signer.Issue(1, "a@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := signer.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenSigner_MissingSecret(t *testing.T) {
	signer := NewTokenSigner(nil, time.Hour)
	if _, err := signer.Issue(1, "a@example.com"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := signer.Validate("whatever"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestTokenSigner_MalformedToken(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Hour)
	if _, err := signer.Validate("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
