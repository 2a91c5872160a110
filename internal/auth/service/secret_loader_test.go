package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

// mockKMSService is a testify mock of KMSService.
type mockKMSService struct {
	mock.Mock
}

func (m *mockKMSService) OpenKeeper(ctx context.Context, keyURI string) (SecretKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(SecretKeeper), args.Error(1)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kms := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kms.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")
		assert.NoError(t, keeper.Close())
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kms.OpenKeeper(ctx, "invalid://uri")
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

func TestResolveSigningSecret(t *testing.T) {
	ctx := context.Background()
	kms := NewKMSService()
	plain := "0123456789abcdef0123456789abcdef"

	t.Run("Success_Plaintext", func(t *testing.T) {
		secret, err := ResolveSigningSecret(ctx, kms, SigningSecretSource{Plaintext: plain})
		require.NoError(t, err)
		assert.Equal(t, []byte(plain), secret)
	})

	t.Run("Success_WrappedRoundTrip", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)

		ciphertext, err := WrapSigningSecret(ctx, kms, keyURI, []byte(plain))
		require.NoError(t, err)
		assert.NotContains(t, ciphertext, plain)

		secret, err := ResolveSigningSecret(ctx, kms, SigningSecretSource{
			Plaintext:  "ignored-when-ciphertext-is-set",
			Ciphertext: ciphertext,
			KeyURI:     keyURI,
		})
		require.NoError(t, err)
		assert.Equal(t, []byte(plain), secret)
	})

	t.Run("Error_ShortPlaintext", func(t *testing.T) {
		_, err := ResolveSigningSecret(ctx, kms, SigningSecretSource{Plaintext: "change-me"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_CiphertextWithoutKeyURI", func(t *testing.T) {
		_, err := ResolveSigningSecret(ctx, kms, SigningSecretSource{Ciphertext: "AAAA"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_CiphertextNotBase64", func(t *testing.T) {
		_, err := ResolveSigningSecret(ctx, kms, SigningSecretSource{
			Ciphertext: "%%%",
			KeyURI:     generateLocalSecretsURI(t),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		ciphertext, err := WrapSigningSecret(ctx, kms, generateLocalSecretsURI(t), []byte(plain))
		require.NoError(t, err)

		_, err = ResolveSigningSecret(ctx, kms, SigningSecretSource{
			Ciphertext: ciphertext,
			KeyURI:     generateLocalSecretsURI(t),
		})
		assert.Contains(t, err.Error(), "failed to decrypt signing secret")
	})

	t.Run("Error_KeeperUnavailable", func(t *testing.T) {
		mockKMS := &mockKMSService{}
		mockKMS.On("OpenKeeper", ctx, "hashivault://portal").
			Return(nil, errors.New("vault sealed"))

		_, err := ResolveSigningSecret(ctx, mockKMS, SigningSecretSource{
			Ciphertext: "AAAA",
			KeyURI:     "hashivault://portal",
		})
		assert.EqualError(t, err, "vault sealed")
		mockKMS.AssertExpectations(t)
	})
}

func TestWrapSigningSecret_RejectsShortSecret(t *testing.T) {
	_, err := WrapSigningSecret(context.Background(), NewKMSService(), generateLocalSecretsURI(t), []byte("short"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGenerateSigningSecret(t *testing.T) {
	first, err := GenerateSigningSecret()
	require.NoError(t, err)
	second, err := GenerateSigningSecret()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(first), MinSecretLength)
	assert.NotEqual(t, first, second)
}
