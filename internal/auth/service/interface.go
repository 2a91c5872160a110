// Package service provides technical services for authentication operations.
//
// This package implements password hashing, session token signing, and the loaders that
// turn configuration (policy documents, KMS-wrapped secrets) into ready-to-use values.
package service

import (
	"time"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// PasswordHasher defines operations for hashing and verifying principal passwords.
// Implementations must produce self-describing hashes (algorithm, cost and salt embedded)
// and verify in constant time.
type PasswordHasher interface {
	// Hash returns a salted hash of plain. Empty input is rejected.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches hash. A malformed or empty hash is a mismatch,
	// never an error.
	Verify(plain, hash string) bool

	// NeedsRehash reports whether hash was produced by a legacy algorithm and should be
	// replaced after the next successful verification.
	NeedsRehash(hash string) bool
}

// SessionCodec issues and verifies the signed session tokens carried in the session cookie.
type SessionCodec interface {
	// Issue signs a token for identity, valid for TTL from now.
	Issue(identity *authDomain.Identity) (string, error)

	// Parse verifies token and returns the identity it was issued for. Every failure,
	// including expiry, is reported as authDomain.ErrInvalidToken.
	Parse(token string) (*authDomain.Identity, error)

	// ParseClaims is like Parse but returns the full claims including timestamps.
	ParseClaims(token string) (*authDomain.Claims, error)

	// TTL returns the validity window of issued tokens.
	TTL() time.Duration
}
