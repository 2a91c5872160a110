package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	"github.com/svit-erp/portalgate/internal/metrics"
)

// Trusted identity headers attached to forwarded requests. Client-supplied copies are removed
// before the gatekeeper runs.
const (
	HeaderPrefix   = "X-Portal-"
	HeaderUserID   = "X-Portal-User-Id"
	HeaderUsername = "X-Portal-Username"
	HeaderRole     = "X-Portal-Role"
	HeaderName     = "X-Portal-Name"
)

// GatekeeperMiddleware applies the access policy to every request it sees.
//
// The middleware:
// 1. Strips any incoming X-Portal-* headers
// 2. Answers 308 to the canonical path when the request path has dot segments or repeated
//    slashes, so the policy and the upstream always see the same path
// 3. Runs Gatekeeper.Decide on the request path and the session cookie
// 4. On a redirect outcome answers 302 with the Location header and aborts
// 5. On allow attaches the identity, if any, to the context and the trusted headers
//
// API paths bypass the policy entirely; a valid cookie on them still yields an identity so the
// upstream API can see who is calling.
func GatekeeperMiddleware(
	gatekeeper *authDomain.Gatekeeper,
	cookie SessionCookie,
	recorder metrics.DecisionRecorder,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		StripIdentityHeaders(c.Request.Header)

		path := c.Request.URL.Path
		if decision, redirect := gatekeeper.Canonicalize(path); redirect {
			recorder.RecordDecision(c.Request.Context(), decision.Outcome.String(), decision.Reason)
			logger.Debug("gatekeeper canonical redirect",
				slog.String("path", path),
				slog.String("location", decision.Location))

			location := decision.Location
			if query := c.Request.URL.RawQuery; query != "" {
				location += "?" + query
			}
			c.Redirect(http.StatusPermanentRedirect, location)
			c.Abort()
			return
		}

		token := cookie.Token(c)

		decision := gatekeeper.Decide(path, token)
		recorder.RecordDecision(c.Request.Context(), decision.Outcome.String(), decision.Reason)

		if !decision.Allowed() {
			logger.Debug("gatekeeper redirect",
				slog.String("path", path),
				slog.String("outcome", decision.Outcome.String()),
				slog.String("reason", decision.Reason),
				slog.String("pattern", decision.Pattern),
				slog.String("location", decision.Location))

			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
			return
		}

		identity := decision.Identity
		if identity == nil && token != "" && gatekeeper.IsAPIPath(path) {
			identity, _ = gatekeeper.Identify(token)
		}

		if identity != nil {
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
			SetIdentityHeaders(c.Request.Header, identity)
		}

		logger.Debug("gatekeeper allow",
			slog.String("path", path),
			slog.String("reason", decision.Reason),
			slog.Bool("authenticated", identity != nil))

		c.Next()
	}
}

// StripIdentityHeaders removes every X-Portal-* header.
func StripIdentityHeaders(header http.Header) {
	for key := range header {
		if strings.HasPrefix(http.CanonicalHeaderKey(key), HeaderPrefix) {
			delete(header, key)
		}
	}
}

// SetIdentityHeaders writes identity into the trusted forward headers.
func SetIdentityHeaders(header http.Header, identity *authDomain.Identity) {
	header.Set(HeaderUserID, identity.ID)
	header.Set(HeaderUsername, identity.Username)
	header.Set(HeaderRole, identity.Role.String())
	header.Set(HeaderName, identity.Name)
}
