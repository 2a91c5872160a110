package usecase

import (
	"context"
	"errors"
	"time"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	"github.com/svit-erp/portalgate/internal/metrics"
)

// authenticatorWithMetrics decorates Authenticator with metrics instrumentation.
type authenticatorWithMetrics struct {
	next    Authenticator
	metrics metrics.BusinessMetrics
}

// NewAuthenticatorWithMetrics wraps an Authenticator with metrics recording.
func NewAuthenticatorWithMetrics(authenticator Authenticator, m metrics.BusinessMetrics) Authenticator {
	return &authenticatorWithMetrics{
		next:    authenticator,
		metrics: m,
	}
}

// Login records metrics for login attempts, classified by outcome.
func (a *authenticatorWithMetrics) Login(
	ctx context.Context,
	username, password string,
) (*authDomain.Identity, error) {
	start := time.Now()
	identity, err := a.next.Login(ctx, username, password)

	status := loginStatus(err)
	a.metrics.RecordOperation(ctx, "auth", "login", status)
	a.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), status)

	return identity, err
}

// loginStatus maps a Login result to its metrics label.
func loginStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, authDomain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, authDomain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, authDomain.ErrLocked):
		return "locked"
	default:
		return "error"
	}
}

// principalUseCaseWithMetrics decorates PrincipalUseCase with metrics instrumentation.
type principalUseCaseWithMetrics struct {
	next    PrincipalUseCase
	metrics metrics.BusinessMetrics
}

// NewPrincipalUseCaseWithMetrics wraps a PrincipalUseCase with metrics recording.
func NewPrincipalUseCaseWithMetrics(useCase PrincipalUseCase, m metrics.BusinessMetrics) PrincipalUseCase {
	return &principalUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for principal creation operations.
func (p *principalUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authDomain.CreatePrincipalInput,
) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := p.next.Create(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "auth", "principal_create", status)
	p.metrics.RecordDuration(ctx, "auth", "principal_create", time.Since(start), status)

	return principal, err
}

// SetPassword records metrics for password reset operations.
func (p *principalUseCaseWithMetrics) SetPassword(
	ctx context.Context,
	kind authDomain.Kind,
	username, password string,
) error {
	start := time.Now()
	err := p.next.SetPassword(ctx, kind, username, password)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "auth", "principal_set_password", status)
	p.metrics.RecordDuration(ctx, "auth", "principal_set_password", time.Since(start), status)

	return err
}
