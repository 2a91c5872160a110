package repository

import (
	"context"
	"database/sql"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// PostgreSQLPrincipalRepository implements Principal persistence for PostgreSQL.
// Statements use numbered $n placeholders.
type PostgreSQLPrincipalRepository struct {
	sqlPrincipalRepository
}

// FindByUsername retrieves the principal of kind with the login name.
func (r *PostgreSQLPrincipalRepository) FindByUsername(
	ctx context.Context,
	kind authDomain.Kind,
	username string,
) (*authDomain.Principal, error) {
	return r.findByUsername(ctx, kind, username)
}

// Create inserts a new principal into its kind's table.
func (r *PostgreSQLPrincipalRepository) Create(ctx context.Context, principal *authDomain.Principal) error {
	return r.create(ctx, principal)
}

// UpdatePasswordHash replaces the stored hash of a principal.
func (r *PostgreSQLPrincipalRepository) UpdatePasswordHash(
	ctx context.Context,
	kind authDomain.Kind,
	id string,
	passwordHash string,
) error {
	return r.updatePasswordHash(ctx, kind, id, passwordHash)
}

// NewPostgreSQLPrincipalRepository creates a new PostgreSQL Principal repository.
func NewPostgreSQLPrincipalRepository(db *sql.DB) *PostgreSQLPrincipalRepository {
	return &PostgreSQLPrincipalRepository{
		sqlPrincipalRepository: sqlPrincipalRepository{
			db:              db,
			placeholder:     dollarPlaceholder,
			uniqueViolation: isPostgreSQLUniqueViolation,
		},
	}
}
