package commands

import (
	"fmt"

	authService "github.com/svit-erp/portalgate/internal/auth/service"
)

// RunHashPassword prints the hash of password under the configured policy. When password is
// empty it is read from the first line of stdin, so it does not end up in shell history.
func RunHashPassword(hasher authService.PasswordHasher, password string, io IOTuple) error {
	if password == "" {
		var err error
		password, err = readSecretLine(io.Reader, "password")
		if err != nil {
			return err
		}
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = fmt.Fprintln(io.Writer, hash)
	return err
}
