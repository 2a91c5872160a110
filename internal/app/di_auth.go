package app

import (
	"context"
	"fmt"
	"time"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	authHTTP "github.com/svit-erp/portalgate/internal/auth/http"
	authRepository "github.com/svit-erp/portalgate/internal/auth/repository"
	authService "github.com/svit-erp/portalgate/internal/auth/service"
	authUseCase "github.com/svit-erp/portalgate/internal/auth/usecase"
	"github.com/svit-erp/portalgate/internal/config"
)

// signingSecretTimeout bounds the KMS round trip that unwraps the signing secret at startup.
const signingSecretTimeout = 30 * time.Second

// KMSService returns the KMS service used to unwrap the signing secret.
func (c *Container) KMSService() authService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = authService.NewKMSService()
	})
	return c.kmsService
}

// SigningSecret returns the session signing secret, unwrapped through KMS when configured as
// ciphertext.
func (c *Container) SigningSecret() ([]byte, error) {
	var err error
	c.signingSecretInit.Do(func() {
		c.signingSecret, err = c.initSigningSecret()
		if err != nil {
			c.initErrors["signingSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingSecret"]; exists {
		return nil, storedErr
	}
	return c.signingSecret, nil
}

// SessionCodec returns the session token codec.
func (c *Container) SessionCodec() (authService.SessionCodec, error) {
	var err error
	c.sessionCodecInit.Do(func() {
		c.sessionCodec, err = c.initSessionCodec()
		if err != nil {
			c.initErrors["sessionCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionCodec"]; exists {
		return nil, storedErr
	}
	return c.sessionCodec, nil
}

// PasswordHasher returns the password hasher for the configured cost policy.
func (c *Container) PasswordHasher() (authService.PasswordHasher, error) {
	var err error
	c.passwordHasherInit.Do(func() {
		c.passwordHasher, err = authService.NewPasswordHasher(c.config.PasswordHashPolicy)
		if err != nil {
			c.initErrors["passwordHasher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["passwordHasher"]; exists {
		return nil, storedErr
	}
	return c.passwordHasher, nil
}

// PolicyTable returns the access policy table, loaded from POLICY_FILE or the built-in default.
func (c *Container) PolicyTable() (*authDomain.PolicyTable, error) {
	var err error
	c.policyTableInit.Do(func() {
		c.policyTable, err = authService.LoadPolicyTable(c.config.PolicyFile, c.config.PolicyJSONPath)
		if err != nil {
			c.initErrors["policyTable"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["policyTable"]; exists {
		return nil, storedErr
	}
	return c.policyTable, nil
}

// Gatekeeper returns the page gatekeeper.
func (c *Container) Gatekeeper() (*authDomain.Gatekeeper, error) {
	var err error
	c.gatekeeperInit.Do(func() {
		c.gatekeeper, err = c.initGatekeeper()
		if err != nil {
			c.initErrors["gatekeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gatekeeper"]; exists {
		return nil, storedErr
	}
	return c.gatekeeper, nil
}

// PrincipalRepository returns the principal repository based on database driver.
func (c *Container) PrincipalRepository() (authUseCase.PrincipalRepository, error) {
	var err error
	c.principalRepositoryInit.Do(func() {
		c.principalRepository, err = c.initPrincipalRepository()
		if err != nil {
			c.initErrors["principalRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["principalRepository"]; exists {
		return nil, storedErr
	}
	return c.principalRepository, nil
}

// AttemptRepository returns the failed-login counter store, or nil when lockout is disabled.
func (c *Container) AttemptRepository() (authUseCase.AttemptRepository, error) {
	var err error
	c.attemptRepositoryInit.Do(func() {
		c.attemptRepository, err = c.initAttemptRepository()
		if err != nil {
			c.initErrors["attemptRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["attemptRepository"]; exists {
		return nil, storedErr
	}
	return c.attemptRepository, nil
}

// Authenticator returns the login authenticator.
func (c *Container) Authenticator() (authUseCase.Authenticator, error) {
	var err error
	c.authenticatorInit.Do(func() {
		c.authenticator, err = c.initAuthenticator()
		if err != nil {
			c.initErrors["authenticator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authenticator"]; exists {
		return nil, storedErr
	}
	return c.authenticator, nil
}

// PrincipalUseCase returns the principal management use case.
func (c *Container) PrincipalUseCase() (authUseCase.PrincipalUseCase, error) {
	var err error
	c.principalUseCaseInit.Do(func() {
		c.principalUseCase, err = c.initPrincipalUseCase()
		if err != nil {
			c.initErrors["principalUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["principalUseCase"]; exists {
		return nil, storedErr
	}
	return c.principalUseCase, nil
}

// AuthHandler returns the HTTP handler for login, logout and session.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// initSigningSecret resolves the signing secret from AUTH_SECRET or AUTH_SECRET_CIPHERTEXT.
func (c *Container) initSigningSecret() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), signingSecretTimeout)
	defer cancel()

	secret, err := authService.ResolveSigningSecret(ctx, c.KMSService(), authService.SigningSecretSource{
		Plaintext:  c.config.AuthSecret,
		Ciphertext: c.config.AuthSecretCiphertext,
		KeyURI:     c.config.KMSKeyURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing secret: %w", err)
	}
	return secret, nil
}

// initSessionCodec creates the session codec from the signing secret.
func (c *Container) initSessionCodec() (authService.SessionCodec, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, err
	}

	codec, err := authService.NewSessionCodec(secret, c.config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session codec: %w", err)
	}
	return codec, nil
}

// initGatekeeper creates the gatekeeper over the policy table and the session codec.
func (c *Container) initGatekeeper() (*authDomain.Gatekeeper, error) {
	table, err := c.PolicyTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load policy table for gatekeeper: %w", err)
	}

	codec, err := c.SessionCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get session codec for gatekeeper: %w", err)
	}

	return authDomain.NewGatekeeper(table, codec, c.config.APIPrefix, c.config.PublicPathList()), nil
}

// initPrincipalRepository creates the principal repository based on the database driver.
func (c *Container) initPrincipalRepository() (authUseCase.PrincipalRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for principal repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DriverMySQL:
		return authRepository.NewMySQLPrincipalRepository(db), nil
	case config.DriverPostgres:
		return authRepository.NewPostgreSQLPrincipalRepository(db), nil
	case config.DriverSQLite:
		return authRepository.NewSQLitePrincipalRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAttemptRepository picks the Redis store when REDIS_URL is set and the in-process one
// otherwise.
func (c *Container) initAttemptRepository() (authUseCase.AttemptRepository, error) {
	if !c.config.LockoutEnabled {
		return nil, nil
	}

	client, err := c.RedisClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis client for attempt repository: %w", err)
	}
	if client != nil {
		return authRepository.NewRedisAttemptRepository(client), nil
	}

	c.Logger().Warn("REDIS_URL not configured, lockout counters are kept per process")
	return authRepository.NewMemoryAttemptRepository(), nil
}

// initAuthenticator creates the authenticator scanning every principal kind in order.
func (c *Container) initAuthenticator() (authUseCase.Authenticator, error) {
	repo, err := c.PrincipalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get principal repository for authenticator: %w", err)
	}

	hasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for authenticator: %w", err)
	}

	attempts, err := c.AttemptRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt repository for authenticator: %w", err)
	}

	baseAuthenticator, err := authUseCase.NewAuthenticator(
		authUseCase.LookupsFor(repo),
		hasher,
		repo,
		attempts,
		authUseCase.LockoutPolicy{
			Enabled:     c.config.LockoutEnabled,
			MaxAttempts: c.config.LockoutMaxAttempts,
			Duration:    c.config.LockoutDuration,
		},
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authenticator: %w", err)
		}
		return authUseCase.NewAuthenticatorWithMetrics(baseAuthenticator, businessMetrics), nil
	}

	return baseAuthenticator, nil
}

// initPrincipalUseCase creates the principal management use case.
func (c *Container) initPrincipalUseCase() (authUseCase.PrincipalUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for principal use case: %w", err)
	}

	repo, err := c.PrincipalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get principal repository for principal use case: %w", err)
	}

	hasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for principal use case: %w", err)
	}

	baseUseCase := authUseCase.NewPrincipalUseCase(txManager, repo, hasher)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for principal use case: %w", err)
		}
		return authUseCase.NewPrincipalUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthHandler creates the HTTP handler for the login API.
func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	authenticator, err := c.Authenticator()
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticator for auth handler: %w", err)
	}

	codec, err := c.SessionCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get session codec for auth handler: %w", err)
	}

	return authHTTP.NewAuthHandler(
		authenticator,
		codec,
		c.sessionCookie(codec),
		c.config.LoginTimeout,
		c.Logger(),
	), nil
}

func (c *Container) sessionCookie(codec authService.SessionCodec) authHTTP.SessionCookie {
	return authHTTP.NewSessionCookie(c.config.SessionCookieName, c.config.SessionCookieSecure, codec.TTL())
}
