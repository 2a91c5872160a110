package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	authUseCase "github.com/svit-erp/portalgate/internal/auth/usecase"
)

// RunSetPassword replaces the password of an existing account.
func RunSetPassword(
	ctx context.Context,
	principalUseCase authUseCase.PrincipalUseCase,
	logger *slog.Logger,
	role, username, password string,
	io IOTuple,
) error {
	kind, err := authDomain.ParseKind(role)
	if err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username cannot be empty")
	}

	password, err = resolvePassword(password, io)
	if err != nil {
		return err
	}

	if err := principalUseCase.SetPassword(ctx, kind, username, password); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "Password updated for %s %s\n", kind, username)
	logger.Info("password updated", slog.String("kind", kind.String()), slog.String("username", username))
	return nil
}
