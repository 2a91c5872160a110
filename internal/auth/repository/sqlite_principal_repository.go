package repository

import (
	"context"
	"database/sql"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// SQLitePrincipalRepository implements Principal persistence for SQLite (modernc.org/sqlite).
// Intended for development and tests; pair it with a single open connection.
type SQLitePrincipalRepository struct {
	sqlPrincipalRepository
}

// FindByUsername retrieves the principal of kind with the login name.
func (r *SQLitePrincipalRepository) FindByUsername(
	ctx context.Context,
	kind authDomain.Kind,
	username string,
) (*authDomain.Principal, error) {
	return r.findByUsername(ctx, kind, username)
}

// Create inserts a new principal into its kind's table.
func (r *SQLitePrincipalRepository) Create(ctx context.Context, principal *authDomain.Principal) error {
	return r.create(ctx, principal)
}

// UpdatePasswordHash replaces the stored hash of a principal.
func (r *SQLitePrincipalRepository) UpdatePasswordHash(
	ctx context.Context,
	kind authDomain.Kind,
	id string,
	passwordHash string,
) error {
	return r.updatePasswordHash(ctx, kind, id, passwordHash)
}

// NewSQLitePrincipalRepository creates a new SQLite Principal repository.
func NewSQLitePrincipalRepository(db *sql.DB) *SQLitePrincipalRepository {
	return &SQLitePrincipalRepository{
		sqlPrincipalRepository: sqlPrincipalRepository{
			db:              db,
			placeholder:     questionPlaceholder,
			uniqueViolation: isSQLiteUniqueViolation,
		},
	}
}
