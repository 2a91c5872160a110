package commands

import (
	"context"
	"fmt"
	"log/slog"

	authService "github.com/svit-erp/portalgate/internal/auth/service"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

// RunWrapSecret encrypts a session signing secret with the keeper at keyURI and prints the
// environment lines to configure the gateway with. With generate set a fresh random secret is
// used; otherwise the secret is the first line of stdin.
func RunWrapSecret(
	ctx context.Context,
	kms authService.KMSService,
	logger *slog.Logger,
	keyURI string,
	generate bool,
	io IOTuple,
) error {
	if keyURI == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "a KMS key URI is required (--key-uri or KMS_KEY_URI)")
	}

	var secret string
	var err error
	if generate {
		secret, err = authService.GenerateSigningSecret()
	} else {
		secret, err = readSecretLine(io.Reader, "secret")
	}
	if err != nil {
		return err
	}

	ciphertext, err := authService.WrapSigningSecret(ctx, kms, keyURI, []byte(secret))
	if err != nil {
		return fmt.Errorf("failed to wrap signing secret: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "KMS_KEY_URI=%s\n", keyURI)
	_, _ = fmt.Fprintf(io.Writer, "AUTH_SECRET_CIPHERTEXT=%s\n", ciphertext)

	logger.Info("signing secret wrapped", slog.Bool("generated", generate))
	return nil
}
