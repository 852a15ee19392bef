package storage

import (
	"testing"
	"time"
)

func TestClampExpiry(t *testing.T) {
	cases := []struct {
		in   int
		want time.Duration
	}{
		{0, DefaultExpiry},
		{-5, DefaultExpiry},
		{10, MinExpiry},
		{60, 60 * time.Second},
		{900, 900 * time.Second},
		{3600, 3600 * time.Second},
		{999999, MaxExpiry},
	}
	for _, c := range cases {
		if got := ClampExpiry(c.in); got != c.want {
			t.Fatalf("ClampExpiry(%d) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSigner_RoundTrip(t *testing.T) {
	s, err := NewSigner("secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	now := time.Now()
	tok, expiresAt, err := s.Sign("bookings/b-1/file.pdf", 900*time.Second, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if want := now.Add(900 * time.Second); !expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
	}

	path, err := s.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if path != "bookings/b-1/file.pdf" {
		t.Fatalf("unexpected path: %s", path)
	}
}

func TestSigner_Expired(t *testing.T) {
	s, _ := NewSigner("secret")
	now := time.Now()
	tok, _, err := s.Sign("p", MinExpiry, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Verify(tok, now.Add(2*time.Minute)); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestSigner_WrongSecret(t *testing.T) {
	a, _ := NewSigner("a")
	b, _ := NewSigner("b")
	now := time.Now()
	tok, _, _ := a.Sign("p", MinExpiry, now)
	if _, err := b.Verify(tok, now); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}
