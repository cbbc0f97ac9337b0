package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/HowsAir/server-sub001/internal/config"
	"github.com/HowsAir/server-sub001/internal/domain"
)

// Kind is the purpose tag of a token. It selects the TTL, the claim shape
// and the cookie the token travels in.
type Kind string

const (
	KindSession           Kind = "session"
	KindPasswordReset     Kind = "password_reset"
	KindEmailVerification Kind = "email_verification"
)

// Policy fixes the per-kind transport channel and lifetime.
type Policy struct {
	CookieName string
	TTL        time.Duration
}

// Claims is the signed token payload. Fields outside the registered set are
// populated per kind: session tokens carry UserID+RoleID, password-reset
// tokens carry UserID, email-verification tokens carry Email.
type Claims struct {
	Kind   Kind        `json:"kind"`
	UserID int64       `json:"uid,omitempty"`
	RoleID domain.Role `json:"rid,omitempty"`
	Email  string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies tokens for every kind. The secret and the
// policy table are set once at construction and never mutated, so a single
// codec is safely shared by all concurrent requests.
type TokenCodec struct {
	secret   []byte
	policies map[Kind]Policy
	now      func() time.Time
}

// CodecOption customizes codec construction.
type CodecOption func(*TokenCodec)

// WithClock injects a custom time source (useful for tests).
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec builds a codec for the given secret and per-kind policies.
func NewTokenCodec(secret string, policies map[Kind]Policy, opts ...CodecOption) *TokenCodec {
	codec := &TokenCodec{
		secret:   []byte(secret),
		policies: policies,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

// PoliciesFromConfig maps the auth configuration onto the per-kind policy table.
func PoliciesFromConfig(cfg config.AuthConfig) map[Kind]Policy {
	return map[Kind]Policy{
		KindSession: {
			CookieName: cfg.SessionCookieName,
			TTL:        time.Duration(cfg.SessionTTLMinutes) * time.Minute,
		},
		KindPasswordReset: {
			CookieName: cfg.PasswordResetCookieName,
			TTL:        time.Duration(cfg.PasswordResetTTLMinutes) * time.Minute,
		},
		KindEmailVerification: {
			CookieName: cfg.EmailVerificationCookieName,
			TTL:        time.Duration(cfg.EmailVerificationTTLMinutes) * time.Minute,
		},
	}
}

// Policy returns the policy registered for the kind.
func (c *TokenCodec) Policy(kind Kind) (Policy, bool) {
	pol, ok := c.policies[kind]
	return pol, ok
}

// Issue serializes and signs a token of the given kind. The kind tag and the
// issued/expiry timestamps are stamped here; the caller only supplies the
// identity claims. Attaching the result to a cookie is the caller's job.
func (c *TokenCodec) Issue(kind Kind, claims Claims) (string, time.Time, error) {
	pol, ok := c.policies[kind]
	if !ok {
		return "", time.Time{}, errors.New("unknown token kind")
	}

	now := c.now()
	expiresAt := now.Add(pol.TTL)

	claims.Kind = kind
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates signature and expiry and returns the embedded claims.
// It fails with ErrMissingCredential on empty input, ErrExpired once the
// expiry has passed (a token presented at exactly expiresAt is expired) and
// ErrInvalidSignature for everything else, including a token minted under a
// different kind. Verification never extends a token's lifetime.
func (c *TokenCodec) Verify(kind Kind, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingCredential
	}
	if _, ok := c.policies[kind]; !ok {
		return nil, ErrInvalidSignature
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.Kind != kind {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
