package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// SessionCookie writes and reads the session cookie. It is always HttpOnly, scoped to "/" and
// SameSite=Lax.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// NewSessionCookie returns a SessionCookie, defaulting the name to "session".
func NewSessionCookie(name string, secure bool, ttl time.Duration) SessionCookie {
	if name == "" {
		name = authDomain.SessionCookieName
	}
	return SessionCookie{Name: name, Secure: secure, TTL: ttl}
}

// Set attaches token with Max-Age equal to the session TTL.
func (s SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, int(s.TTL.Seconds()), "/", "", s.Secure, true)
}

// Clear expires the cookie in the browser.
func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// Token returns the raw cookie value, or "" when the request has none.
func (s SessionCookie) Token(c *gin.Context) string {
	token, err := c.Cookie(s.Name)
	if err != nil {
		return ""
	}
	return token
}
