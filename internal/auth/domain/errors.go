package domain

import (
	"time"

	"github.com/svit-erp/portalgate/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrInvalidCredentials is returned for an unknown login name, a principal without a stored
	// hash and a wrong password alike, so callers cannot tell which part was wrong.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken indicates a missing, malformed, forged or expired session token.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid session token")

	// ErrForbidden indicates a valid session whose role is not allowed on the requested path.
	ErrForbidden = errors.Wrap(errors.ErrForbidden, "role not allowed on path")

	// ErrStoreUnavailable indicates the credential store could not be queried.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "credential store unavailable")

	// ErrLocked indicates too many failed login attempts for a login name.
	ErrLocked = errors.Wrap(errors.ErrLocked, "login temporarily locked")

	// ErrPrincipalNotFound indicates no principal of the requested kind has the login name.
	ErrPrincipalNotFound = errors.Wrap(errors.ErrNotFound, "principal not found")

	// ErrPrincipalExists indicates the login name is already taken within its kind.
	ErrPrincipalExists = errors.Wrap(errors.ErrConflict, "principal already exists")

	// ErrUnknownKind indicates a role string that is not one of the four principal kinds.
	ErrUnknownKind = errors.Wrap(errors.ErrInvalidInput, "unknown principal kind")

	// ErrInvalidPolicy indicates an access policy entry that cannot be compiled.
	ErrInvalidPolicy = errors.Wrap(errors.ErrInvalidInput, "invalid access policy")
)

// LockoutError reports a locked login name together with the time left on the lock.
// It matches ErrLocked under errors.Is.
type LockoutError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *LockoutError) Error() string {
	return ErrLocked.Error()
}

// Unwrap exposes ErrLocked to errors.Is.
func (e *LockoutError) Unwrap() error {
	return ErrLocked
}
