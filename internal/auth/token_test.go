package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars"

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return ts
}

func TestNewTokenService_RejectsWeakConfig(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Error("NewTokenService() should reject a secret under 16 characters")
	}
	if _, err := NewTokenService(testSecret, 0); err == nil {
		t.Error("NewTokenService() should reject a non-positive ttl")
	}
}

func TestGenerateValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	token, err := ts.Generate(42)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	userID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Validate() = %d, want 42", userID)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)
	other, err := NewTokenService("a-completely-different-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := ts.Generate(1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := other.Validate(token); err == nil {
		t.Error("Validate() accepted a token signed with a different secret")
	}
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t, time.Nanosecond)

	token, err := ts.Generate(1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := ts.Validate(token); err == nil {
		t.Error("Validate() accepted an expired token")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := ts.Validate(token); err == nil {
			t.Errorf("Validate(%q) accepted a malformed token", token)
		}
	}
}
