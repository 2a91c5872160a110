package repository

import (
	"context"
	"database/sql"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// MySQLPrincipalRepository implements Principal persistence for MySQL. The DSN must set
// parseTime=true so created_at scans into time.Time.
type MySQLPrincipalRepository struct {
	sqlPrincipalRepository
}

// FindByUsername retrieves the principal of kind with the login name.
func (r *MySQLPrincipalRepository) FindByUsername(
	ctx context.Context,
	kind authDomain.Kind,
	username string,
) (*authDomain.Principal, error) {
	return r.findByUsername(ctx, kind, username)
}

// Create inserts a new principal into its kind's table.
func (r *MySQLPrincipalRepository) Create(ctx context.Context, principal *authDomain.Principal) error {
	return r.create(ctx, principal)
}

// UpdatePasswordHash replaces the stored hash of a principal.
func (r *MySQLPrincipalRepository) UpdatePasswordHash(
	ctx context.Context,
	kind authDomain.Kind,
	id string,
	passwordHash string,
) error {
	return r.updatePasswordHash(ctx, kind, id, passwordHash)
}

// NewMySQLPrincipalRepository creates a new MySQL Principal repository.
func NewMySQLPrincipalRepository(db *sql.DB) *MySQLPrincipalRepository {
	return &MySQLPrincipalRepository{
		sqlPrincipalRepository: sqlPrincipalRepository{
			db:              db,
			placeholder:     questionPlaceholder,
			uniqueViolation: isMySQLUniqueViolation,
		},
	}
}
