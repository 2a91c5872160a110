package commands

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	authUseCase "github.com/svit-erp/portalgate/internal/auth/usecase"
	customValidation "github.com/svit-erp/portalgate/internal/validation"
)

// minPasswordLength is the shortest password the CLI will provision.
const minPasswordLength = 8

// CreatePrincipalArgs holds the create-principal flags.
type CreatePrincipalArgs struct {
	Role     string
	Username string
	Name     string
	ID       string
	Password string
}

// Validate checks the flags before any password is read or hashed.
func (a *CreatePrincipalArgs) Validate() error {
	err := validation.ValidateStruct(a,
		validation.Field(&a.Role, validation.Required, customValidation.PrincipalRole),
		validation.Field(&a.Username,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&a.Name, customValidation.NoWhitespace, validation.Length(0, 255)),
		validation.Field(&a.ID, customValidation.NoWhitespace, validation.Length(0, 64)),
	)
	return customValidation.WrapValidationError(err)
}

// RunCreatePrincipal creates an account in the table of the given role. It replaces the seed
// script as the way to bootstrap the first admin. The password is read from stdin when the
// flag is empty; the stored hash is never printed.
//
// Requirements: Database must be migrated and accessible.
func RunCreatePrincipal(
	ctx context.Context,
	principalUseCase authUseCase.PrincipalUseCase,
	logger *slog.Logger,
	args CreatePrincipalArgs,
	format string,
	io IOTuple,
) error {
	if err := args.Validate(); err != nil {
		return err
	}

	password, err := resolvePassword(args.Password, io)
	if err != nil {
		return err
	}

	kind, err := authDomain.ParseKind(args.Role)
	if err != nil {
		return err
	}

	logger.Info("creating principal",
		slog.String("kind", kind.String()),
		slog.String("username", args.Username),
	)

	principal, err := principalUseCase.Create(ctx, &authDomain.CreatePrincipalInput{
		Kind:     kind,
		ID:       args.ID,
		Username: args.Username,
		Name:     args.Name,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create principal: %w", err)
	}

	identity := principal.Identity()
	if format == "json" {
		if err := writeJSON(io.Writer, map[string]string{
			"id":       identity.ID,
			"username": identity.Username,
			"name":     identity.Name,
			"role":     identity.Role.String(),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(io.Writer, "Principal created successfully!")
		_, _ = fmt.Fprintf(io.Writer, "ID: %s\n", identity.ID)
		_, _ = fmt.Fprintf(io.Writer, "Role: %s\n", identity.Role)
		_, _ = fmt.Fprintf(io.Writer, "Username: %s\n", identity.Username)
		_, _ = fmt.Fprintf(io.Writer, "Name: %s\n", identity.Name)
	}

	logger.Info("principal created successfully",
		slog.String("id", principal.ID),
		slog.String("kind", kind.String()),
	)
	return nil
}

// resolvePassword returns password, or reads it from stdin when empty, and checks its length.
func resolvePassword(password string, io IOTuple) (string, error) {
	if password == "" {
		var err error
		password, err = readSecretLine(io.Reader, "password")
		if err != nil {
			return "", err
		}
	}

	err := validation.Validate(password, customValidation.PasswordStrength{MinLength: minPasswordLength})
	if err != nil {
		return "", customValidation.WrapValidationError(err)
	}
	return password, nil
}
