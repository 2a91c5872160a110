// Package usecase defines business logic interfaces for authentication and authorization operations.
package usecase

import (
	"context"
	"time"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// PrincipalRepository defines persistence operations for principals of all four kinds.
// Implementations must support transaction-aware operations via context propagation.
type PrincipalRepository interface {
	// FindByUsername returns the principal of kind with the login name.
	// Returns ErrPrincipalNotFound if the kind has no such row.
	FindByUsername(ctx context.Context, kind authDomain.Kind, username string) (*authDomain.Principal, error)

	// Create stores a new principal. Returns ErrPrincipalExists if the login name is taken
	// within the kind.
	Create(ctx context.Context, principal *authDomain.Principal) error

	// UpdatePasswordHash replaces the stored hash of the principal of kind with id.
	// Returns ErrPrincipalNotFound if no row was updated.
	UpdatePasswordHash(ctx context.Context, kind authDomain.Kind, id string, passwordHash string) error
}

// AttemptRepository counts failed logins per key within a sliding expiry window.
// Implementations must be safe for concurrent use.
type AttemptRepository interface {
	// Failures returns the current failure count for key and how long until it expires.
	Failures(ctx context.Context, key string) (count int, ttl time.Duration, err error)

	// RegisterFailure increments the failure count for key. The window starts with the
	// first failure and is not extended by later ones.
	RegisterFailure(ctx context.Context, key string, window time.Duration) (count int, err error)

	// Reset clears the failure count for key.
	Reset(ctx context.Context, key string) error
}

// Authenticator resolves login credentials to an identity.
type Authenticator interface {
	// Login scans the principal kinds in lookup order and verifies password against the first
	// principal found.
	//
	// Returns ErrInvalidCredentials for an unknown name, a principal without a stored hash or
	// a wrong password; ErrStoreUnavailable if a lookup fails or ctx ends; and a
	// *LockoutError (matching ErrLocked) while too many failures are on record.
	Login(ctx context.Context, username, password string) (*authDomain.Identity, error)
}

// PrincipalUseCase provisions accounts from the command line.
type PrincipalUseCase interface {
	// Create hashes the password and stores a new principal.
	// Returns ErrPrincipalExists if the login name is taken within the kind.
	Create(ctx context.Context, input *authDomain.CreatePrincipalInput) (*authDomain.Principal, error)

	// SetPassword replaces the password of an existing principal.
	// Returns ErrPrincipalNotFound if the kind has no such login name.
	SetPassword(ctx context.Context, kind authDomain.Kind, username, password string) error
}
