package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets/localsecrets"

	authService "github.com/svit-erp/portalgate/internal/auth/service"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

func newLocalKeyURI(t *testing.T) string {
	t.Helper()

	key, err := localsecrets.NewRandomKey()
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key[:])
}

// parseEnvLines turns KEY=VALUE output lines into a map.
func parseEnvLines(t *testing.T, output string) map[string]string {
	t.Helper()

	values := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		require.True(t, ok, scanner.Text())
		values[key] = value
	}
	return values
}

func TestRunWrapSecret(t *testing.T) {
	ctx := context.Background()
	kms := authService.NewKMSService()

	t.Run("Success_StdinSecretRoundTrips", func(t *testing.T) {
		keyURI := newLocalKeyURI(t)
		secret := "0123456789abcdef0123456789abcdef-stdin"

		var out bytes.Buffer
		err := RunWrapSecret(ctx, kms, discardLogger(), keyURI, false,
			IOTuple{Reader: strings.NewReader(secret + "\n"), Writer: &out})
		require.NoError(t, err)

		values := parseEnvLines(t, out.String())
		assert.Equal(t, keyURI, values["KMS_KEY_URI"])

		unwrapped, err := authService.ResolveSigningSecret(ctx, kms, authService.SigningSecretSource{
			Ciphertext: values["AUTH_SECRET_CIPHERTEXT"],
			KeyURI:     keyURI,
		})
		require.NoError(t, err)
		assert.Equal(t, []byte(secret), unwrapped)
	})

	t.Run("Success_GeneratedSecret", func(t *testing.T) {
		keyURI := newLocalKeyURI(t)

		var out bytes.Buffer
		err := RunWrapSecret(ctx, kms, discardLogger(), keyURI, true,
			IOTuple{Reader: strings.NewReader(""), Writer: &out})
		require.NoError(t, err)

		values := parseEnvLines(t, out.String())
		unwrapped, err := authService.ResolveSigningSecret(ctx, kms, authService.SigningSecretSource{
			Ciphertext: values["AUTH_SECRET_CIPHERTEXT"],
			KeyURI:     keyURI,
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(unwrapped), authService.MinSecretLength)
	})

	t.Run("Error_MissingKeyURI", func(t *testing.T) {
		err := RunWrapSecret(ctx, kms, discardLogger(), "", true,
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_ShortSecret", func(t *testing.T) {
		err := RunWrapSecret(ctx, kms, discardLogger(), newLocalKeyURI(t), false,
			IOTuple{Reader: strings.NewReader("short\n"), Writer: &bytes.Buffer{}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
