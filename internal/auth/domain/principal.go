package domain

import (
	"strings"
	"time"
)

// ParseKind converts a role string into a Kind. Matching is exact: tokens and policy files
// always carry the lower-case role names.
func ParseKind(role string) (Kind, error) {
	switch Kind(role) {
	case KindAdmin, KindTeacher, KindStudent, KindParent:
		return Kind(role), nil
	default:
		return "", ErrUnknownKind
	}
}

// IsValid reports whether k is one of the four principal kinds.
func (k Kind) IsValid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// HomePath returns the kind's landing page, e.g. "/teacher".
func (k Kind) HomePath() string {
	return "/" + string(k)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Principal is an account row from one of the four principal tables.
type Principal struct {
	ID           string
	Username     string
	Name         string
	Kind         Kind
	PasswordHash string `json:"-"` //nolint:gosec // stored hash, never serialized
	CreatedAt    time.Time
}

// HasCredential reports whether the principal has a usable stored hash.
func (p *Principal) HasCredential() bool {
	return strings.TrimSpace(p.PasswordHash) != ""
}

// Identity returns the credential-free identity of the principal. The display name falls back
// to the login name when the account has none.
func (p *Principal) Identity() *Identity {
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name = p.Username
	}
	return &Identity{
		ID:       p.ID,
		Username: p.Username,
		Name:     name,
		Role:     p.Kind,
	}
}

// Identity is an authenticated caller as seen by the gatekeeper and downstream handlers.
type Identity struct {
	ID       string
	Username string
	Name     string
	Role     Kind
}

// Claims is the signed content of a session token.
type Claims struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      Kind   `json:"role"`
	Name      string `json:"name,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewClaims builds claims for identity valid from now for ttl. Timestamps are unix seconds.
func NewClaims(identity *Identity, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		ID:        identity.ID,
		Username:  identity.Username,
		Role:      identity.Role,
		Name:      identity.Name,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// Validate checks that every required claim is present and well-formed. It does not check expiry.
func (c *Claims) Validate() error {
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Username) == "" {
		return ErrInvalidToken
	}
	if !c.Role.IsValid() {
		return ErrInvalidToken
	}
	if c.IssuedAt <= 0 || c.ExpiresAt <= c.IssuedAt {
		return ErrInvalidToken
	}
	return nil
}

// Expired reports whether the claims are no longer valid at now.
func (c *Claims) Expired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}

// Identity returns the identity described by the claims.
func (c *Claims) Identity() *Identity {
	return &Identity{
		ID:       c.ID,
		Username: c.Username,
		Name:     c.Name,
		Role:     c.Role,
	}
}

// CreatePrincipalInput holds the fields needed to provision an account.
type CreatePrincipalInput struct {
	Kind     Kind
	ID       string // optional; a UUIDv7 is generated when empty
	Username string
	Name     string
	Password string
}
