package internal

import (
	"strings"
	"testing"
)

func TestNewResetToken(t *testing.T) {
	token, err := NewResetToken(32)
	if err != nil {
		t.Fatalf("NewResetToken failed: %v", err)
	}
	if len(token) != 32 {
		t.Fatalf("token length %d, want 32", len(token))
	}
	for _, c := range token {
		if !strings.ContainsRune(tokenAlphabet, c) {
			t.Fatalf("token contains %q outside the alphabet", c)
		}
	}
}

func TestNewResetTokenRejectsShortLength(t *testing.T) {
	if _, err := NewResetToken(16); err == nil {
		t.Fatal("expected error for a length below 32")
	}
}

func TestNewResetTokenIsUnpredictable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := NewResetToken(32)
		if err != nil {
			t.Fatalf("NewResetToken failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestHashIdentity(t *testing.T) {
	digest := HashIdentity("alice@example.com")
	if len(digest) != 64 {
		t.Fatalf("digest length %d, want 64 hex characters", len(digest))
	}
	if digest != HashIdentity("alice@example.com") {
		t.Fatal("expected a stable digest for the same input")
	}
	if digest == HashIdentity("bob@example.com") {
		t.Fatal("expected distinct digests for distinct inputs")
	}
	if strings.Contains(digest, "@") {
		t.Fatal("digest must not contain the plaintext input")
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  Alice@Example.COM ": "alice@example.com",
		"bob@example.com":      "bob@example.com",
		"   ":                  "",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
