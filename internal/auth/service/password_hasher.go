package service

import (
	"fmt"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

// Supported values of PASSWORD_HASH_POLICY.
const (
	HashPolicyInteractive = "interactive"
	HashPolicyModerate    = "moderate"
)

// Legacy bcrypt hashes from the seeded accounts use one of these prefixes.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// passwordHasher implements PasswordHasher using Argon2id, with read-only bcrypt support.
type passwordHasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordHasher creates a PasswordHasher for the given Argon2id policy name.
// An empty policy selects the moderate policy.
func NewPasswordHasher(policy string) (PasswordHasher, error) {
	var (
		hasher *pwdhash.PasswordHasher
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", HashPolicyModerate:
		hasher, err = pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	case HashPolicyInteractive:
		hasher, err = pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	default:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown password hash policy %q", policy)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	return &passwordHasher{hasher: hasher}, nil
}

// Hash hashes plain using Argon2id.
func (h *passwordHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "password is required")
	}

	hash, err := h.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// Verify performs a constant-time comparison between plain and hash.
func (h *passwordHasher) Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}

	if isBcryptHash(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}

	ok, err := h.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}

// NeedsRehash reports true for bcrypt hashes.
func (h *passwordHasher) NeedsRehash(hash string) bool {
	return isBcryptHash(hash)
}

func isBcryptHash(hash string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}
