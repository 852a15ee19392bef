package storage

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signed URL lifetime bounds. Client-requested values are clamped
// server-side regardless of what was asked for.
const (
	MinExpiry     = 60 * time.Second
	MaxExpiry     = 3600 * time.Second
	DefaultExpiry = 900 * time.Second
)

// ClampExpiry maps a client-requested lifetime in seconds onto
// [MinExpiry, MaxExpiry]; zero or negative means DefaultExpiry.
func ClampExpiry(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultExpiry
	}
	d := time.Duration(seconds) * time.Second
	if d < MinExpiry {
		return MinExpiry
	}
	if d > MaxExpiry {
		return MaxExpiry
	}
	return d
}

type downloadClaims struct {
	jwt.RegisteredClaims

	Path string `json:"path"`
}

// Signer issues time-boxed, single-object download tokens (HS256).
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("missing sign secret")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign mints a download token for one blob path.
func (s *Signer) Sign(path string, expiry time.Duration, now time.Time) (token string, expiresAt time.Time, err error) {
	if path == "" {
		return "", time.Time{}, fmt.Errorf("empty path")
	}
	expiresAt = now.Add(expiry)
	claims := downloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Path: path,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates a download token and returns the blob path it grants.
func (s *Signer) Verify(token string, now time.Time) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &downloadClaims{}
	tok, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tok.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return "", fmt.Errorf("token expired")
	}
	if claims.Path == "" {
		return "", fmt.Errorf("missing path")
	}
	return claims.Path, nil
}
