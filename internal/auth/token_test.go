package auth_test

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/config"
	"github.com/HowsAir/server-sub001/internal/domain"
)

func testPolicies() map[auth.Kind]auth.Policy {
	return auth.PoliciesFromConfig(config.AuthConfig{
		SessionTTLMinutes:           3 * 24 * 60,
		PasswordResetTTLMinutes:     15,
		EmailVerificationTTLMinutes: 15,
		SessionCookieName:           "auth_token",
		PasswordResetCookieName:     "password_reset_token",
		EmailVerificationCookieName: "email_verified_token",
	})
}

func newCodec(t *testing.T, opts ...auth.CodecOption) *auth.TokenCodec {
	t.Helper()
	return auth.NewTokenCodec("test-secret", testPolicies(), opts...)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newCodec(t)

	cases := []struct {
		name   string
		kind   auth.Kind
		claims auth.Claims
	}{
		{"session", auth.KindSession, auth.Claims{UserID: 7, RoleID: domain.RoleUser}},
		{"session admin", auth.KindSession, auth.Claims{UserID: 42, RoleID: domain.RoleAdmin}},
		{"password reset", auth.KindPasswordReset, auth.Claims{UserID: 7}},
		{"email verification", auth.KindEmailVerification, auth.Claims{Email: "ana@example.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, exp, err := codec.Issue(tc.kind, tc.claims)
			require.NoError(t, err)
			require.NotEmpty(t, token)
			assert.True(t, exp.After(time.Now()))

			claims, err := codec.Verify(tc.kind, token)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, claims.Kind)
			assert.Equal(t, tc.claims.UserID, claims.UserID)
			assert.Equal(t, tc.claims.RoleID, claims.RoleID)
			assert.Equal(t, tc.claims.Email, claims.Email)
		})
	}
}

func TestTokenCodec_MissingCredential(t *testing.T) {
	codec := newCodec(t)

	_, err := codec.Verify(auth.KindSession, "")
	assert.ErrorIs(t, err, auth.ErrMissingCredential)
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	issuer := newCodec(t, auth.WithClock(func() time.Time { return issuedAt }))
	token, exp, err := issuer.Issue(auth.KindPasswordReset, auth.Claims{UserID: 7})
	require.NoError(t, err)
	require.Equal(t, issuedAt.Add(ttl), exp)

	verifyAt := func(now time.Time) error {
		verifier := newCodec(t, auth.WithClock(func() time.Time { return now }))
		_, err := verifier.Verify(auth.KindPasswordReset, token)
		return err
	}

	assert.NoError(t, verifyAt(exp.Add(-time.Second)))
	// Expiry is exclusive of further use: exactly at expiresAt the token is dead.
	assert.ErrorIs(t, verifyAt(exp), auth.ErrExpired)
	assert.ErrorIs(t, verifyAt(exp.Add(time.Second)), auth.ErrExpired)
}

func TestTokenCodec_NoSlidingExpiration(t *testing.T) {
	issuedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newCodec(t, auth.WithClock(func() time.Time { return issuedAt }))

	token, exp, err := issuer.Issue(auth.KindSession, auth.Claims{UserID: 7, RoleID: domain.RoleUser})
	require.NoError(t, err)

	// Repeated verification does not move the expiry.
	verifier := newCodec(t, auth.WithClock(func() time.Time { return exp.Add(-time.Minute) }))
	for i := 0; i < 3; i++ {
		claims, err := verifier.Verify(auth.KindSession, token)
		require.NoError(t, err)
		assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	}
}

func TestTokenCodec_KindIsolation(t *testing.T) {
	codec := newCodec(t)

	resetToken, _, err := codec.Issue(auth.KindPasswordReset, auth.Claims{UserID: 7})
	require.NoError(t, err)
	sessionToken, _, err := codec.Issue(auth.KindSession, auth.Claims{UserID: 7, RoleID: domain.RoleUser})
	require.NoError(t, err)
	emailToken, _, err := codec.Issue(auth.KindEmailVerification, auth.Claims{Email: "ana@example.com"})
	require.NoError(t, err)

	// Same secret, different kind: never accepted.
	_, err = codec.Verify(auth.KindSession, resetToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
	_, err = codec.Verify(auth.KindPasswordReset, sessionToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
	_, err = codec.Verify(auth.KindSession, emailToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
	_, err = codec.Verify(auth.KindEmailVerification, resetToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenCodec("secret-a", testPolicies())
	verifier := auth.NewTokenCodec("secret-b", testPolicies())

	token, _, err := issuer.Issue(auth.KindSession, auth.Claims{UserID: 7, RoleID: domain.RoleUser})
	require.NoError(t, err)

	_, err = verifier.Verify(auth.KindSession, token)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func TestTokenCodec_TamperSensitivity(t *testing.T) {
	codec := newCodec(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		claims := auth.Claims{UserID: rng.Int63n(1 << 32), RoleID: domain.Role(1 + rng.Intn(2))}
		token, _, err := codec.Issue(auth.KindSession, claims)
		require.NoError(t, err)

		for j := 0; j < 10; j++ {
			pos := tamperPosition(rng, token)
			tampered := tamperAt(token, pos, rng)
			require.NotEqual(t, token, tampered)

			_, err := codec.Verify(auth.KindSession, tampered)
			assert.ErrorIs(t, err, auth.ErrInvalidSignature,
				"tampered position %d of %q must not verify", pos, token)
		}
	}
}

// tamperPosition picks a random index, avoiding the final character of each
// dot-separated segment: its low bits are base64 padding, so two distinct
// characters there can decode to identical bytes.
func tamperPosition(rng *rand.Rand, token string) int {
	for {
		pos := rng.Intn(len(token))
		if pos == len(token)-1 || token[pos+1] == '.' {
			continue
		}
		return pos
	}
}

func tamperAt(token string, pos int, rng *rand.Rand) string {
	for {
		replacement := tokenAlphabet[rng.Intn(len(tokenAlphabet))]
		if replacement == token[pos] {
			continue
		}
		return token[:pos] + string(replacement) + token[pos+1:]
	}
}

func TestTokenCodec_MalformedInput(t *testing.T) {
	codec := newCodec(t)

	for _, garbage := range []string{"not-a-token", "a.b", "a.b.c", strings.Repeat(".", 5)} {
		_, err := codec.Verify(auth.KindSession, garbage)
		assert.ErrorIs(t, err, auth.ErrInvalidSignature, "input %q", garbage)
	}
}
