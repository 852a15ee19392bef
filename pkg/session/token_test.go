package session

import (
	"testing"
	"time"
)

func TestToken_RoundTrip(t *testing.T) {
	now := time.Now()
	tok, err := Issue("secret", "u-1", "a@example.com", "user", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s, err := Verify(tok, "secret", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if s.UserID != "u-1" || s.Email != "a@example.com" || s.Role != "user" {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestToken_Expired(t *testing.T) {
	now := time.Now()
	tok, err := Issue("secret", "u-1", "a@example.com", "user", time.Minute, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Verify(tok, "secret", now.Add(2*time.Minute)); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestToken_WrongSecret(t *testing.T) {
	now := time.Now()
	tok, _ := Issue("secret", "u-1", "", "", time.Hour, now)
	if _, err := Verify(tok, "other", now); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}
