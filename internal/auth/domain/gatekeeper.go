package domain

import (
	"path"
	"strings"
)

// DefaultAPIPrefix marks paths that bypass page gatekeeping entirely.
const DefaultAPIPrefix = "/api/"

// TokenParser decodes a session token into the identity it was issued for.
// Implementations return ErrInvalidToken for anything they cannot vouch for.
type TokenParser interface {
	Parse(token string) (*Identity, error)
}

// Outcome is the terminal state of a gatekeeping decision.
type Outcome int

const (
	// OutcomeAllow forwards the request.
	OutcomeAllow Outcome = iota

	// OutcomeRedirectLogin sends a caller without a usable session back to the login page.
	OutcomeRedirectLogin

	// OutcomeRedirectHome sends a caller whose role is not allowed to its own landing page.
	OutcomeRedirectHome

	// OutcomeRedirectCanonical sends a request for a non-canonical path to its cleaned form.
	OutcomeRedirectCanonical
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeAllow:
		return "allow"
	case OutcomeRedirectLogin:
		return "redirect_login"
	case OutcomeRedirectHome:
		return "redirect_home"
	case OutcomeRedirectCanonical:
		return "redirect_canonical"
	default:
		return "unknown"
	}
}

// Decision reasons, used for debug logs and the check-access command.
const (
	ReasonAPIBypass    = "api_bypass"
	ReasonPublicPath   = "public_path"
	ReasonNoSession    = "no_session"
	ReasonRoleAllowed  = "role_allowed"
	ReasonRoleDenied   = "role_denied"
	ReasonNoRule       = "no_matching_rule"
	ReasonNonCanonical = "non_canonical_path"
)

// Decision is the result of gatekeeping one request path.
type Decision struct {
	Outcome  Outcome
	Location string    // redirect target; empty when allowed
	Identity *Identity // decoded caller, when a session was presented and valid
	Pattern  string    // pattern of the deciding rule, if any
	Reason   string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Err maps the decision onto the error taxonomy: nil, ErrInvalidToken or ErrForbidden.
func (d Decision) Err() error {
	switch d.Outcome {
	case OutcomeRedirectLogin:
		return ErrInvalidToken
	case OutcomeRedirectHome:
		return ErrForbidden
	default:
		return nil
	}
}

// Gatekeeper decides, per request path and session token, whether a page request is allowed.
// It holds only immutable state and is safe for concurrent use.
type Gatekeeper struct {
	table       *PolicyTable
	parser      TokenParser
	apiPrefix   string
	publicPaths map[string]struct{}
}

// NewGatekeeper creates a Gatekeeper. An empty apiPrefix falls back to "/api/"; a nil
// publicPaths slice makes "/" the only public path.
func NewGatekeeper(table *PolicyTable, parser TokenParser, apiPrefix string, publicPaths []string) *Gatekeeper {
	if apiPrefix == "" {
		apiPrefix = DefaultAPIPrefix
	}
	if publicPaths == nil {
		publicPaths = []string{"/"}
	}

	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		if p = strings.TrimSpace(p); p != "" {
			public[p] = struct{}{}
		}
	}

	return &Gatekeeper{
		table:       table,
		parser:      parser,
		apiPrefix:   apiPrefix,
		publicPaths: public,
	}
}

// IsAPIPath reports whether path is under the API prefix.
func (g *Gatekeeper) IsAPIPath(path string) bool {
	return strings.HasPrefix(path, g.apiPrefix)
}

// IsPublicPath reports whether path is reachable without a session.
func (g *Gatekeeper) IsPublicPath(path string) bool {
	_, ok := g.publicPaths[path]
	return ok
}

// CanonicalPath resolves dot segments and repeated slashes the way the portal application
// does, so rules are matched against the path that is actually served. The result is rooted and
// keeps a trailing slash.
func CanonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	if cleaned != "/" && strings.HasSuffix(p, "/") {
		cleaned += "/"
	}
	return cleaned
}

// Canonicalize returns a redirect to the canonical form of p when p is not already canonical.
func (g *Gatekeeper) Canonicalize(p string) (Decision, bool) {
	canonical := CanonicalPath(p)
	if canonical == p {
		return Decision{}, false
	}
	return Decision{
		Outcome:  OutcomeRedirectCanonical,
		Location: canonical,
		Reason:   ReasonNonCanonical,
	}, true
}

// Decide runs the gatekeeping state machine for one request.
//
// The path is canonicalized first, so "/api/../admin" is judged as "/admin".
//
// API and public paths are allowed without looking at the token. Otherwise the token must
// decode, else the caller is sent to "/". With an identity, the first policy rule matching the
// path decides: allowed roles pass, others are sent to their own landing page. A path no rule
// matches is open to any authenticated caller.
func (g *Gatekeeper) Decide(path, token string) Decision {
	path = CanonicalPath(path)
	if g.IsAPIPath(path) || g.IsPublicPath(path) {
		return g.DecideFor(path, nil)
	}

	identity, err := g.identify(token)
	if err != nil {
		identity = nil
	}
	return g.DecideFor(path, identity)
}

// DecideFor is Decide with the caller already identified; a nil identity means no session.
func (g *Gatekeeper) DecideFor(path string, identity *Identity) Decision {
	path = CanonicalPath(path)

	if g.IsAPIPath(path) {
		return Decision{Outcome: OutcomeAllow, Identity: identity, Reason: ReasonAPIBypass}
	}
	if g.IsPublicPath(path) {
		return Decision{Outcome: OutcomeAllow, Identity: identity, Reason: ReasonPublicPath}
	}
	if identity == nil {
		return Decision{Outcome: OutcomeRedirectLogin, Location: "/", Reason: ReasonNoSession}
	}

	return g.Authorize(path, identity)
}

// Authorize applies only the policy table to an already authenticated identity.
func (g *Gatekeeper) Authorize(path string, identity *Identity) Decision {
	rule, ok := g.table.Match(CanonicalPath(path))
	if !ok {
		return Decision{Outcome: OutcomeAllow, Identity: identity, Reason: ReasonNoRule}
	}

	if rule.Allows(identity.Role) {
		return Decision{
			Outcome:  OutcomeAllow,
			Identity: identity,
			Pattern:  rule.Pattern,
			Reason:   ReasonRoleAllowed,
		}
	}

	return Decision{
		Outcome:  OutcomeRedirectHome,
		Location: identity.Role.HomePath(),
		Identity: identity,
		Pattern:  rule.Pattern,
		Reason:   ReasonRoleDenied,
	}
}

// Identify decodes token without applying any path rules. It is what API handlers use to
// learn who the caller is.
func (g *Gatekeeper) Identify(token string) (*Identity, error) {
	return g.identify(token)
}

func (g *Gatekeeper) identify(token string) (*Identity, error) {
	if token == "" || g.parser == nil {
		return nil, ErrInvalidToken
	}
	identity, err := g.parser.Parse(token)
	if err != nil || identity == nil || !identity.Role.IsValid() {
		return nil, ErrInvalidToken
	}
	return identity, nil
}
