package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	serviceMocks "github.com/svit-erp/portalgate/internal/auth/service/mocks"
	"github.com/svit-erp/portalgate/internal/auth/usecase/mocks"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

const testDummyHash = "$argon2id$dummy"

type authFixture struct {
	repo     *mocks.MockPrincipalRepository
	attempts *mocks.MockAttemptRepository
	hasher   *serviceMocks.MockPasswordHasher
	auth     Authenticator
}

func newAuthFixture(t *testing.T, lockout LockoutPolicy) *authFixture {
	t.Helper()

	f := &authFixture{
		repo:     &mocks.MockPrincipalRepository{},
		attempts: &mocks.MockAttemptRepository{},
		hasher:   &serviceMocks.MockPasswordHasher{},
	}
	f.hasher.On("Hash", dummyPassword).Return(testDummyHash, nil).Once()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth, err := NewAuthenticator(LookupsFor(f.repo), f.hasher, f.repo, f.attempts, lockout, logger)
	require.NoError(t, err)
	f.auth = auth
	return f
}

func (f *authFixture) notFound(kinds ...authDomain.Kind) {
	for _, kind := range kinds {
		f.repo.On("FindByUsername", mock.Anything, kind, mock.Anything).
			Return(nil, authDomain.ErrPrincipalNotFound).
			Once()
	}
}

func (f *authFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.attempts.AssertExpectations(t)
	f.hasher.AssertExpectations(t)
}

func TestNewAuthenticator(t *testing.T) {
	t.Run("Error_DummyHashFails", func(t *testing.T) {
		hasher := &serviceMocks.MockPasswordHasher{}
		hasher.On("Hash", dummyPassword).Return("", errors.New("out of memory"))

		auth, err := NewAuthenticator(nil, hasher, nil, nil, LockoutPolicy{}, slog.Default())
		assert.Nil(t, auth)
		assert.Error(t, err)
	})
}

func TestLookupsFor_Order(t *testing.T) {
	lookups := LookupsFor(&mocks.MockPrincipalRepository{})

	kinds := make([]authDomain.Kind, 0, len(lookups))
	for _, lookup := range lookups {
		kinds = append(kinds, lookup.Kind)
	}
	assert.Equal(t, []authDomain.Kind{
		authDomain.KindAdmin,
		authDomain.KindTeacher,
		authDomain.KindStudent,
		authDomain.KindParent,
	}, kinds)
}

func TestAuthenticator_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Admin", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		admin := &authDomain.Principal{ID: "admin1", Username: "admin", PasswordHash: "$argon2id$admin"}

		f.repo.On("FindByUsername", mock.Anything, authDomain.KindAdmin, "admin").Return(admin, nil).Once()
		f.hasher.On("Verify", "admin123", "$argon2id$admin").Return(true).Once()
		f.hasher.On("NeedsRehash", "$argon2id$admin").Return(false).Once()

		identity, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, &authDomain.Identity{
			ID:       "admin1",
			Username: "admin",
			Name:     "admin",
			Role:     authDomain.KindAdmin,
		}, identity)
		f.assertExpectations(t)
	})

	t.Run("Success_TeacherShadowsStudentWithSameName", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		teacher := &authDomain.Principal{ID: "t1", Username: "shared", Name: "Dr. Rajesh", PasswordHash: "hash-t"}

		f.notFound(authDomain.KindAdmin)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindTeacher, "shared").Return(teacher, nil).Once()
		f.hasher.On("Verify", "pw", "hash-t").Return(true).Once()
		f.hasher.On("NeedsRehash", "hash-t").Return(false).Once()

		identity, err := f.auth.Login(ctx, "shared", "pw")
		require.NoError(t, err)
		assert.Equal(t, authDomain.KindTeacher, identity.Role)
		assert.Equal(t, "Dr. Rajesh", identity.Name)
		f.repo.AssertNotCalled(t, "FindByUsername", mock.Anything, authDomain.KindStudent, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Success_Parent", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		parent := &authDomain.Principal{ID: "parentId1", Username: "parentId1", Name: "PName 1", PasswordHash: "hash-p"}

		f.notFound(authDomain.KindAdmin, authDomain.KindTeacher, authDomain.KindStudent)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindParent, "parentId1").Return(parent, nil).Once()
		f.hasher.On("Verify", "parent123", "hash-p").Return(true).Once()
		f.hasher.On("NeedsRehash", "hash-p").Return(false).Once()

		identity, err := f.auth.Login(ctx, "parentId1", "parent123")
		require.NoError(t, err)
		assert.Equal(t, authDomain.KindParent, identity.Role)
		f.assertExpectations(t)
	})

	t.Run("Error_UnknownUserVerifiesDummyHash", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})

		f.notFound(authDomain.LookupOrder...)
		f.hasher.On("Verify", "whatever", testDummyHash).Return(false).Once()

		identity, err := f.auth.Login(ctx, "ghost", "whatever")
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.assertExpectations(t)
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		student := &authDomain.Principal{ID: "s1", Username: "student1", PasswordHash: "hash-s"}

		f.notFound(authDomain.KindAdmin, authDomain.KindTeacher)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindStudent, "student1").Return(student, nil).Once()
		f.hasher.On("Verify", "nope", "hash-s").Return(false).Once()

		_, err := f.auth.Login(ctx, "student1", "nope")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.assertExpectations(t)
	})

	t.Run("Error_FirstMatchWithWrongPasswordStopsScan", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		teacher := &authDomain.Principal{ID: "t1", Username: "shared", PasswordHash: "hash-t"}

		f.notFound(authDomain.KindAdmin)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindTeacher, "shared").Return(teacher, nil).Once()
		f.hasher.On("Verify", "student-password", "hash-t").Return(false).Once()

		_, err := f.auth.Login(ctx, "shared", "student-password")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.repo.AssertNotCalled(t, "FindByUsername", mock.Anything, authDomain.KindStudent, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Error_PrincipalWithoutHash", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		admin := &authDomain.Principal{ID: "admin1", Username: "admin"}

		f.repo.On("FindByUsername", mock.Anything, authDomain.KindAdmin, "admin").Return(admin, nil).Once()
		f.hasher.On("Verify", "anything", testDummyHash).Return(false).Once()

		_, err := f.auth.Login(ctx, "admin", "anything")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.assertExpectations(t)
	})

	t.Run("Error_BlankCredentials", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})

		_, err := f.auth.Login(ctx, "  ", "pw")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)

		_, err = f.auth.Login(ctx, "admin", "")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)

		f.repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		dbErr := errors.New("connection refused")

		f.notFound(authDomain.KindAdmin)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindTeacher, "faculty1").Return(nil, dbErr).Once()

		_, err := f.auth.Login(ctx, "faculty1", "teacher123")
		assert.ErrorIs(t, err, authDomain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.assertExpectations(t)
	})

	t.Run("Error_ContextCancelled", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.auth.Login(cancelled, "admin", "admin123")
		assert.ErrorIs(t, err, authDomain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
		f.repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthenticator_Lockout(t *testing.T) {
	ctx := context.Background()
	policy := LockoutPolicy{Enabled: true, MaxAttempts: 3, Duration: 15 * time.Minute}

	t.Run("Error_LockedBeforeLookup", func(t *testing.T) {
		f := newAuthFixture(t, policy)
		f.attempts.On("Failures", mock.Anything, "admin").Return(3, 10*time.Minute, nil).Once()

		_, err := f.auth.Login(ctx, " Admin ", "admin123")
		assert.ErrorIs(t, err, authDomain.ErrLocked)

		var lockErr *authDomain.LockoutError
		require.True(t, errors.As(err, &lockErr))
		assert.Equal(t, 10*time.Minute, lockErr.RetryAfter)
		f.repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Success_FailureIsCountedForUnknownNames", func(t *testing.T) {
		f := newAuthFixture(t, policy)
		f.attempts.On("Failures", mock.Anything, "ghost").Return(0, time.Duration(0), nil).Once()
		f.notFound(authDomain.LookupOrder...)
		f.hasher.On("Verify", "pw", testDummyHash).Return(false).Once()
		f.attempts.On("RegisterFailure", mock.Anything, "ghost", 15*time.Minute).Return(1, nil).Once()

		_, err := f.auth.Login(ctx, "ghost", "pw")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.assertExpectations(t)
	})

	t.Run("Success_SuccessResetsCounter", func(t *testing.T) {
		f := newAuthFixture(t, policy)
		admin := &authDomain.Principal{ID: "admin1", Username: "admin", PasswordHash: "hash-a"}

		f.attempts.On("Failures", mock.Anything, "admin").Return(2, 5*time.Minute, nil).Once()
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindAdmin, "admin").Return(admin, nil).Once()
		f.hasher.On("Verify", "admin123", "hash-a").Return(true).Once()
		f.attempts.On("Reset", mock.Anything, "admin").Return(nil).Once()
		f.hasher.On("NeedsRehash", "hash-a").Return(false).Once()

		_, err := f.auth.Login(ctx, "admin", "admin123")
		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Success_LockoutStoreDownDoesNotBlockLogin", func(t *testing.T) {
		f := newAuthFixture(t, policy)
		admin := &authDomain.Principal{ID: "admin1", Username: "admin", PasswordHash: "hash-a"}
		redisErr := errors.New("redis: connection refused")

		f.attempts.On("Failures", mock.Anything, "admin").Return(0, time.Duration(0), redisErr).Once()
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindAdmin, "admin").Return(admin, nil).Once()
		f.hasher.On("Verify", "admin123", "hash-a").Return(true).Once()
		f.attempts.On("Reset", mock.Anything, "admin").Return(redisErr).Once()
		f.hasher.On("NeedsRehash", "hash-a").Return(false).Once()

		identity, err := f.auth.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "admin1", identity.ID)
		f.assertExpectations(t)
	})

	t.Run("Success_DisabledWithoutStore", func(t *testing.T) {
		hasher := &serviceMocks.MockPasswordHasher{}
		hasher.On("Hash", dummyPassword).Return(testDummyHash, nil)
		hasher.On("Verify", "pw", testDummyHash).Return(false)
		repo := &mocks.MockPrincipalRepository{}
		repo.On("FindByUsername", mock.Anything, mock.Anything, "ghost").Return(nil, authDomain.ErrPrincipalNotFound)

		auth, err := NewAuthenticator(LookupsFor(repo), hasher, repo, nil, policy, slog.Default())
		require.NoError(t, err)

		_, err = auth.Login(ctx, "ghost", "pw")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})
}

func TestAuthenticator_LegacyRehash(t *testing.T) {
	ctx := context.Background()
	legacy := "$2a$10$legacyhash"

	t.Run("Success_UpgradesLegacyHash", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		teacher := &authDomain.Principal{ID: "teacher1", Username: "faculty1", PasswordHash: legacy}

		f.notFound(authDomain.KindAdmin)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindTeacher, "faculty1").Return(teacher, nil).Once()
		f.hasher.On("Verify", "teacher123", legacy).Return(true).Once()
		f.hasher.On("NeedsRehash", legacy).Return(true).Once()
		f.hasher.On("Hash", "teacher123").Return("$argon2id$new", nil).Once()
		f.repo.On("UpdatePasswordHash", mock.Anything, authDomain.KindTeacher, "teacher1", "$argon2id$new").
			Return(nil).
			Once()

		identity, err := f.auth.Login(ctx, "faculty1", "teacher123")
		require.NoError(t, err)
		assert.Equal(t, "teacher1", identity.ID)
		f.assertExpectations(t)
	})

	t.Run("Success_UpgradeFailureKeepsLogin", func(t *testing.T) {
		f := newAuthFixture(t, LockoutPolicy{})
		teacher := &authDomain.Principal{ID: "teacher1", Username: "faculty1", PasswordHash: legacy}

		f.notFound(authDomain.KindAdmin)
		f.repo.On("FindByUsername", mock.Anything, authDomain.KindTeacher, "faculty1").Return(teacher, nil).Once()
		f.hasher.On("Verify", "teacher123", legacy).Return(true).Once()
		f.hasher.On("NeedsRehash", legacy).Return(true).Once()
		f.hasher.On("Hash", "teacher123").Return("$argon2id$new", nil).Once()
		f.repo.On("UpdatePasswordHash", mock.Anything, authDomain.KindTeacher, "teacher1", "$argon2id$new").
			Return(errors.New("read-only replica")).
			Once()

		identity, err := f.auth.Login(ctx, "faculty1", "teacher123")
		require.NoError(t, err)
		assert.Equal(t, authDomain.KindTeacher, identity.Role)
		f.assertExpectations(t)
	})
}
