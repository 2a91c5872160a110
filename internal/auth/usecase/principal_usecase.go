package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	authService "github.com/svit-erp/portalgate/internal/auth/service"
	"github.com/svit-erp/portalgate/internal/database"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

// principalUseCase implements PrincipalUseCase.
type principalUseCase struct {
	txManager database.TxManager
	repo      PrincipalRepository
	hasher    authService.PasswordHasher
}

// NewPrincipalUseCase creates a new PrincipalUseCase with the provided dependencies.
func NewPrincipalUseCase(
	txManager database.TxManager,
	repo PrincipalRepository,
	hasher authService.PasswordHasher,
) PrincipalUseCase {
	return &principalUseCase{
		txManager: txManager,
		repo:      repo,
		hasher:    hasher,
	}
}

// Create hashes the password and stores a new principal. The existence check and the insert
// run in one transaction; the store's unique index is the final arbiter.
func (p *principalUseCase) Create(
	ctx context.Context,
	input *authDomain.CreatePrincipalInput,
) (*authDomain.Principal, error) {
	if !input.Kind.IsValid() {
		return nil, authDomain.ErrUnknownKind
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "username is required")
	}

	hash, err := p.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	principal := &authDomain.Principal{
		ID:           id,
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		Kind:         input.Kind,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = p.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := p.repo.FindByUsername(ctx, input.Kind, username)
		if err == nil {
			return authDomain.ErrPrincipalExists
		}
		if !errors.Is(err, authDomain.ErrPrincipalNotFound) {
			return err
		}
		return p.repo.Create(ctx, principal)
	})
	if err != nil {
		return nil, err
	}

	return principal, nil
}

// SetPassword hashes password and stores it for the principal of kind with the login name.
func (p *principalUseCase) SetPassword(
	ctx context.Context,
	kind authDomain.Kind,
	username, password string,
) error {
	if !kind.IsValid() {
		return authDomain.ErrUnknownKind
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return err
	}

	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		principal, err := p.repo.FindByUsername(ctx, kind, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		return p.repo.UpdatePasswordHash(ctx, kind, principal.ID, hash)
	})
}
