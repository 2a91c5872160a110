// Package mocks provides mock implementations of the auth services for testing.
package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// MockPasswordHasher is a mock implementation of PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// Hash mocks the Hash method.
func (m *MockPasswordHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockPasswordHasher) Verify(plain, hash string) bool {
	args := m.Called(plain, hash)
	return args.Bool(0)
}

// NeedsRehash mocks the NeedsRehash method.
func (m *MockPasswordHasher) NeedsRehash(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// MockSessionCodec is a mock implementation of SessionCodec.
type MockSessionCodec struct {
	mock.Mock
}

// Issue mocks the Issue method.
func (m *MockSessionCodec) Issue(identity *authDomain.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

// Parse mocks the Parse method.
func (m *MockSessionCodec) Parse(token string) (*authDomain.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}

// ParseClaims mocks the ParseClaims method.
func (m *MockSessionCodec) ParseClaims(token string) (*authDomain.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Claims), args.Error(1)
}

// TTL mocks the TTL method.
func (m *MockSessionCodec) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
