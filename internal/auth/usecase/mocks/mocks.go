// Package mocks provides mock implementations of the auth use case interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// MockPrincipalRepository is a mock implementation of PrincipalRepository.
type MockPrincipalRepository struct {
	mock.Mock
}

// FindByUsername mocks the FindByUsername method.
func (m *MockPrincipalRepository) FindByUsername(
	ctx context.Context,
	kind authDomain.Kind,
	username string,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, kind, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// Create mocks the Create method.
func (m *MockPrincipalRepository) Create(ctx context.Context, principal *authDomain.Principal) error {
	args := m.Called(ctx, principal)
	return args.Error(0)
}

// UpdatePasswordHash mocks the UpdatePasswordHash method.
func (m *MockPrincipalRepository) UpdatePasswordHash(
	ctx context.Context,
	kind authDomain.Kind,
	id string,
	passwordHash string,
) error {
	args := m.Called(ctx, kind, id, passwordHash)
	return args.Error(0)
}

// MockAttemptRepository is a mock implementation of AttemptRepository.
type MockAttemptRepository struct {
	mock.Mock
}

// Failures mocks the Failures method.
func (m *MockAttemptRepository) Failures(ctx context.Context, key string) (int, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Get(1).(time.Duration), args.Error(2)
}

// RegisterFailure mocks the RegisterFailure method.
func (m *MockAttemptRepository) RegisterFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	args := m.Called(ctx, key, window)
	return args.Int(0), args.Error(1)
}

// Reset mocks the Reset method.
func (m *MockAttemptRepository) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockAuthenticator is a mock implementation of Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

// Login mocks the Login method.
func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (*authDomain.Identity, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}

// MockPrincipalUseCase is a mock implementation of PrincipalUseCase.
type MockPrincipalUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockPrincipalUseCase) Create(
	ctx context.Context,
	input *authDomain.CreatePrincipalInput,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// SetPassword mocks the SetPassword method.
func (m *MockPrincipalUseCase) SetPassword(
	ctx context.Context,
	kind authDomain.Kind,
	username, password string,
) error {
	args := m.Called(ctx, kind, username, password)
	return args.Error(0)
}

// MockTxManager is a mock implementation of database.TxManager that runs fn inline unless an
// error is configured.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
