// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	authService "github.com/svit-erp/portalgate/internal/auth/service"
)

// dummyPassword is hashed once at startup; misses verify against that hash so an unknown
// login name costs as much as a wrong password.
const dummyPassword = "portal-dummy-password-for-timing"

// PrincipalLookup is one step of the login scan: the kind it searches and how to search it.
type PrincipalLookup struct {
	Kind authDomain.Kind
	Find func(ctx context.Context, username string) (*authDomain.Principal, error)
}

// LookupsFor returns the login scan over repo in the fixed order admin, teacher, student,
// parent.
func LookupsFor(repo PrincipalRepository) []PrincipalLookup {
	lookups := make([]PrincipalLookup, 0, len(authDomain.LookupOrder))
	for _, kind := range authDomain.LookupOrder {
		lookups = append(lookups, PrincipalLookup{
			Kind: kind,
			Find: func(ctx context.Context, username string) (*authDomain.Principal, error) {
				return repo.FindByUsername(ctx, kind, username)
			},
		})
	}
	return lookups
}

// LockoutPolicy configures brute-force protection. A zero MaxAttempts disables it.
type LockoutPolicy struct {
	Enabled     bool
	MaxAttempts int
	Duration    time.Duration
}

func (p LockoutPolicy) active() bool {
	return p.Enabled && p.MaxAttempts > 0 && p.Duration > 0
}

// authenticator implements Authenticator.
type authenticator struct {
	lookups   []PrincipalLookup
	hasher    authService.PasswordHasher
	repo      PrincipalRepository
	attempts  AttemptRepository
	lockout   LockoutPolicy
	dummyHash string
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator scanning lookups in order. repo is used only to
// upgrade legacy password hashes after a successful login; attempts may be nil when the
// lockout policy is disabled.
func NewAuthenticator(
	lookups []PrincipalLookup,
	hasher authService.PasswordHasher,
	repo PrincipalRepository,
	attempts AttemptRepository,
	lockout LockoutPolicy,
	logger *slog.Logger,
) (Authenticator, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	if attempts == nil {
		lockout.Enabled = false
	}

	return &authenticator{
		lookups:   lookups,
		hasher:    hasher,
		repo:      repo,
		attempts:  attempts,
		lockout:   lockout,
		dummyHash: dummyHash,
		logger:    logger,
	}, nil
}

// Login authenticates username and password.
//
// This method:
// 1. Refuses blank credentials
// 2. Refuses locked login names before touching the store
// 3. Scans the principal kinds in order, stopping at the first hit
// 4. Verifies the password (against a dummy hash on a miss)
// 5. Records the failure or clears the counter, and upgrades legacy hashes
func (a *authenticator) Login(ctx context.Context, username, password string) (*authDomain.Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, authDomain.ErrInvalidCredentials
	}

	key := attemptKey(username)
	if err := a.checkLockout(ctx, key); err != nil {
		return nil, err
	}

	principal, err := a.find(ctx, username)
	if err != nil {
		return nil, err
	}

	if principal == nil || !principal.HasCredential() {
		a.hasher.Verify(password, a.dummyHash)
		return nil, a.fail(ctx, key)
	}

	if !a.hasher.Verify(password, principal.PasswordHash) {
		return nil, a.fail(ctx, key)
	}

	a.succeed(ctx, key)
	a.upgradeHash(ctx, principal, password)

	return principal.Identity(), nil
}

// find returns the first principal matching username, or nil when no kind has it.
func (a *authenticator) find(ctx context.Context, username string) (*authDomain.Principal, error) {
	for _, lookup := range a.lookups {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("lookup %s: %w: %w", lookup.Kind, authDomain.ErrStoreUnavailable, err)
		}

		principal, err := lookup.Find(ctx, username)
		if errors.Is(err, authDomain.ErrPrincipalNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w: %w", lookup.Kind, authDomain.ErrStoreUnavailable, err)
		}
		if principal == nil {
			continue
		}

		principal.Kind = lookup.Kind
		return principal, nil
	}
	return nil, nil
}

func (a *authenticator) checkLockout(ctx context.Context, key string) error {
	if !a.lockout.active() {
		return nil
	}

	count, ttl, err := a.attempts.Failures(ctx, key)
	if err != nil {
		a.logger.Warn("lockout store unavailable, skipping lockout check", slog.Any("error", err))
		return nil
	}
	if count >= a.lockout.MaxAttempts {
		return &authDomain.LockoutError{RetryAfter: ttl}
	}
	return nil
}

func (a *authenticator) fail(ctx context.Context, key string) error {
	if !a.lockout.active() {
		return authDomain.ErrInvalidCredentials
	}

	count, err := a.attempts.RegisterFailure(ctx, key, a.lockout.Duration)
	if err != nil {
		a.logger.Warn("failed to record login failure", slog.Any("error", err))
		return authDomain.ErrInvalidCredentials
	}
	if count >= a.lockout.MaxAttempts {
		a.logger.Info("login name locked", slog.Int("failures", count))
	}
	return authDomain.ErrInvalidCredentials
}

func (a *authenticator) succeed(ctx context.Context, key string) {
	if !a.lockout.active() {
		return
	}
	if err := a.attempts.Reset(ctx, key); err != nil {
		a.logger.Warn("failed to reset login failures", slog.Any("error", err))
	}
}

// upgradeHash replaces a legacy hash after a successful verification. Failure only costs the
// upgrade, never the login.
func (a *authenticator) upgradeHash(ctx context.Context, principal *authDomain.Principal, password string) {
	if a.repo == nil || !a.hasher.NeedsRehash(principal.PasswordHash) {
		return
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Warn("failed to rehash legacy password", slog.Any("error", err))
		return
	}

	if err := a.repo.UpdatePasswordHash(ctx, principal.Kind, principal.ID, hash); err != nil {
		a.logger.Warn(
			"failed to store upgraded password hash",
			slog.String("kind", principal.Kind.String()),
			slog.String("id", principal.ID),
			slog.Any("error", err),
		)
		return
	}
	principal.PasswordHash = hash
}

// attemptKey normalizes a login name for failure counting.
func attemptKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
