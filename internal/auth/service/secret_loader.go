package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	apperrors "github.com/svit-erp/portalgate/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// SecretKeeper is the subset of *secrets.Keeper used to wrap and unwrap the signing secret.
type SecretKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for the configured KMS provider.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (SecretKeeper, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for keyURI.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (SecretKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// SigningSecretSource describes where the session signing secret comes from. Exactly one of
// Plaintext or Ciphertext is used; Ciphertext wins when both are set.
type SigningSecretSource struct {
	Plaintext  string // raw secret (AUTH_SECRET)
	Ciphertext string // base64 KMS ciphertext (AUTH_SECRET_CIPHERTEXT)
	KeyURI     string // keeper URI for Ciphertext (KMS_KEY_URI)
}

// ResolveSigningSecret returns the signing secret, unwrapping it through the KMS keeper
// when it is configured as ciphertext. The result is at least MinSecretLength bytes.
func ResolveSigningSecret(ctx context.Context, kms KMSService, src SigningSecretSource) ([]byte, error) {
	var secret []byte

	if ciphertext := strings.TrimSpace(src.Ciphertext); ciphertext != "" {
		if strings.TrimSpace(src.KeyURI) == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "KMS_KEY_URI is required with AUTH_SECRET_CIPHERTEXT")
		}

		raw, err := base64.StdEncoding.DecodeString(ciphertext)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "signing secret ciphertext is not valid base64")
		}

		keeper, err := kms.OpenKeeper(ctx, src.KeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = keeper.Close()
		}()

		secret, err = keeper.Decrypt(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt signing secret: %w", err)
		}
	} else {
		secret = []byte(src.Plaintext)
	}

	if len(secret) < MinSecretLength {
		return nil, apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"signing secret must be at least %d bytes",
			MinSecretLength,
		)
	}
	return secret, nil
}

// WrapSigningSecret encrypts secret with the keeper at keyURI and returns the base64
// ciphertext to be stored in AUTH_SECRET_CIPHERTEXT.
func WrapSigningSecret(ctx context.Context, kms KMSService, keyURI string, secret []byte) (string, error) {
	if len(secret) < MinSecretLength {
		return "", apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"signing secret must be at least %d bytes",
			MinSecretLength,
		)
	}

	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, secret)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt signing secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// GenerateSigningSecret creates a new random 32-byte secret, base64url-encoded so it can be
// pasted into AUTH_SECRET as-is.
func GenerateSigningSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(err, "failed to generate signing secret")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
