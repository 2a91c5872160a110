package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

func newTestHasher(t *testing.T) PasswordHasher {
	t.Helper()
	hasher, err := NewPasswordHasher(HashPolicyInteractive)
	require.NoError(t, err)
	return hasher
}

func TestNewPasswordHasher(t *testing.T) {
	t.Run("Success_DefaultPolicy", func(t *testing.T) {
		hasher, err := NewPasswordHasher("")
		require.NoError(t, err)
		assert.IsType(t, &passwordHasher{}, hasher)
	})

	t.Run("Success_CaseInsensitivePolicy", func(t *testing.T) {
		_, err := NewPasswordHasher(" Moderate ")
		assert.NoError(t, err)
	})

	t.Run("Error_UnknownPolicy", func(t *testing.T) {
		hasher, err := NewPasswordHasher("paranoid")
		assert.Nil(t, hasher)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := newTestHasher(t)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		hash, err := hasher.Hash("admin123")
		require.NoError(t, err)

		assert.Contains(t, hash, "$argon2id$")
		assert.NotContains(t, hash, "admin123")
		assert.True(t, hasher.Verify("admin123", hash))
		assert.False(t, hasher.NeedsRehash(hash))
	})

	t.Run("Success_SamePasswordProducesDifferentHashes", func(t *testing.T) {
		hash1, err := hasher.Hash("teacher123")
		require.NoError(t, err)
		hash2, err := hasher.Hash("teacher123")
		require.NoError(t, err)

		assert.NotEqual(t, hash1, hash2)
		assert.True(t, hasher.Verify("teacher123", hash1))
		assert.True(t, hasher.Verify("teacher123", hash2))
	})

	t.Run("Failure_WrongPassword", func(t *testing.T) {
		hash, err := hasher.Hash("student123")
		require.NoError(t, err)

		assert.False(t, hasher.Verify("student124", hash))
		assert.False(t, hasher.Verify("Student123", hash))
		assert.False(t, hasher.Verify("", hash))
	})

	t.Run("Failure_MalformedHash", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.False(t, hasher.Verify("student123", ""))
			assert.False(t, hasher.Verify("student123", "invalid-hash-format"))
			assert.False(t, hasher.Verify("student123", "$argon2id$v=19$broken"))
			assert.False(t, hasher.Verify("student123", "$2a$10$short"))
		})
	})

	t.Run("Error_EmptyPassword", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPasswordHasher_LegacyBcrypt(t *testing.T) {
	hasher := newTestHasher(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("parent123"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, hasher.Verify("parent123", string(legacy)))
	assert.False(t, hasher.Verify("parent124", string(legacy)))
	assert.True(t, hasher.NeedsRehash(string(legacy)))
}
