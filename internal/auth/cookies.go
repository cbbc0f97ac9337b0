package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieWriter attaches and clears the per-kind token cookies. Each kind has
// its own named cookie, so a token can never be presented on another kind's
// channel by accident.
type CookieWriter struct {
	codec  *TokenCodec
	secure bool
}

// NewCookieWriter builds a writer. secure should be true in production so
// cookies are only sent over HTTPS.
func NewCookieWriter(codec *TokenCodec, secure bool) *CookieWriter {
	return &CookieWriter{codec: codec, secure: secure}
}

// Attach sets the kind's cookie on the response. The cookie is httpOnly and
// lives exactly as long as the token it carries.
func (w *CookieWriter) Attach(c *fiber.Ctx, kind Kind, token string, expiresAt time.Time) {
	pol, ok := w.codec.Policy(kind)
	if !ok {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     pol.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(pol.TTL / time.Second),
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Clear expires the kind's cookie immediately.
func (w *CookieWriter) Clear(c *fiber.Ctx, kind Kind) {
	pol, ok := w.codec.Policy(kind)
	if !ok {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     pol.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Read returns the raw token presented on the kind's cookie, empty if absent.
func (w *CookieWriter) Read(c *fiber.Ctx, kind Kind) string {
	pol, ok := w.codec.Policy(kind)
	if !ok {
		return ""
	}
	return c.Cookies(pol.CookieName)
}
