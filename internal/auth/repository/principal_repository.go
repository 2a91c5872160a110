// Package repository implements data persistence for principals and login attempts.
//
// Principals live in one table per kind (admins, teachers, students, parents) with the same
// columns. PostgreSQL, MySQL and SQLite implementations share the statements below and differ
// only in placeholder syntax and unique-violation detection. All of them honor transactions
// via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	"github.com/svit-erp/portalgate/internal/database"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

// principalTables maps each kind to its table. Table names never come from input.
var principalTables = map[authDomain.Kind]string{
	authDomain.KindAdmin:   "admins",
	authDomain.KindTeacher: "teachers",
	authDomain.KindStudent: "students",
	authDomain.KindParent:  "parents",
}

// TableFor returns the table holding principals of kind.
func TableFor(kind authDomain.Kind) (string, error) {
	table, ok := principalTables[kind]
	if !ok {
		return "", authDomain.ErrUnknownKind
	}
	return table, nil
}

// sqlPrincipalRepository holds the dialect-independent principal statements.
type sqlPrincipalRepository struct {
	db              *sql.DB
	placeholder     func(n int) string
	uniqueViolation func(err error) bool
}

func (r *sqlPrincipalRepository) findByUsername(
	ctx context.Context,
	kind authDomain.Kind,
	username string,
) (*authDomain.Principal, error) {
	table, err := TableFor(kind)
	if err != nil {
		return nil, err
	}

	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf( //nolint:gosec // table name comes from principalTables
		`SELECT id, username, password_hash, name, created_at FROM %s WHERE username = %s`,
		table,
		r.placeholder(1),
	)

	var (
		principal    authDomain.Principal
		passwordHash sql.NullString
		name         sql.NullString
	)

	err = querier.QueryRowContext(ctx, query, username).Scan(
		&principal.ID,
		&principal.Username,
		&passwordHash,
		&name,
		&principal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrPrincipalNotFound
		}
		return nil, apperrors.Wrapf(err, "failed to get %s by username", kind)
	}

	principal.Kind = kind
	principal.PasswordHash = passwordHash.String
	principal.Name = name.String

	return &principal, nil
}

func (r *sqlPrincipalRepository) create(ctx context.Context, principal *authDomain.Principal) error {
	table, err := TableFor(principal.Kind)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf( //nolint:gosec // table name comes from principalTables
		`INSERT INTO %s (id, username, password_hash, name, created_at) VALUES (%s, %s, %s, %s, %s)`,
		table,
		r.placeholder(1),
		r.placeholder(2),
		r.placeholder(3),
		r.placeholder(4),
		r.placeholder(5),
	)

	_, err = querier.ExecContext(
		ctx,
		query,
		principal.ID,
		principal.Username,
		nullString(principal.PasswordHash),
		nullString(principal.Name),
		principal.CreatedAt,
	)
	if err != nil {
		if r.uniqueViolation(err) {
			return authDomain.ErrPrincipalExists
		}
		return apperrors.Wrapf(err, "failed to create %s", principal.Kind)
	}
	return nil
}

func (r *sqlPrincipalRepository) updatePasswordHash(
	ctx context.Context,
	kind authDomain.Kind,
	id string,
	passwordHash string,
) error {
	table, err := TableFor(kind)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf( //nolint:gosec // table name comes from principalTables
		`UPDATE %s SET password_hash = %s WHERE id = %s`,
		table,
		r.placeholder(1),
		r.placeholder(2),
	)

	result, err := querier.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return apperrors.Wrapf(err, "failed to update %s password hash", kind)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return authDomain.ErrPrincipalNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func questionPlaceholder(int) string {
	return "?"
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// isSQLiteUniqueViolation checks if the error is a SQLite unique constraint violation.
func isSQLiteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// SQLite: "constraint failed: UNIQUE constraint failed: admins.username (2067)"
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
