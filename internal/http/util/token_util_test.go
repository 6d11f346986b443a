package util

import (
	"testing"
	"time"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Minute)

	token, err := signer.Issue("abc123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if err := signer.Validate("abc123", token); err != nil {
		t.Fatalf("Validate rejected a freshly issued token: %v", err)
	}
}

func TestTokenSigner_RejectsWrongCode(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Minute)

	token, err := signer.Issue("abc123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if err := signer.Validate("other99", token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for a different code, got %v", err)
	}
}

func TestTokenSigner_RejectsExpired(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), -time.Minute)

	token, err := signer.Issue("abc123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if err := signer.Validate("abc123", token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestTokenSigner_RejectsTamperedToken(t *testing.T) {
	signer := NewTokenSigner([]byte("test-secret"), time.Minute)

	token, err := signer.Issue("abc123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tampered := "A" + token[1:]
	if err := signer.Validate("abc123", tampered); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for a tampered token, got %v", err)
	}

	if err := signer.Validate("abc123", "not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestTokenSigner_RequiresSecret(t *testing.T) {
	signer := NewTokenSigner(nil, time.Minute)

	if _, err := signer.Issue("abc123"); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if err := signer.Validate("abc123", "x.y"); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
