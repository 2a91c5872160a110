package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migrateDatabase "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/svit-erp/portalgate/internal/config"
	"github.com/svit-erp/portalgate/internal/database"
)

// migrationsDirs maps a database driver to its directory under migrations/.
var migrationsDirs = map[string]string{
	config.DriverPostgres: "postgresql",
	config.DriverMySQL:    "mysql",
	config.DriverSQLite:   "sqlite",
}

// RunMigrations applies all pending migrations from migrations/<dir> for the driver. The
// connection is opened through the same database package the server uses so DSN handling is
// identical. Returns nil if there is nothing to apply.
func RunMigrations(logger *slog.Logger, driver, dsn string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	dir, ok := migrationsDirs[driver]
	if !ok {
		return fmt.Errorf("failed to create migrate instance: unsupported driver %q", driver)
	}

	db, err := database.Connect(database.Config{
		Driver:             driver,
		ConnectionString:   dsn,
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	var instance migrateDatabase.Driver
	switch driver {
	case config.DriverPostgres:
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case config.DriverMySQL:
		instance, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Closing m closes instance, which closes db.
	m, err := migrate.NewWithDatabaseInstance("file://migrations/"+dir, driver, instance)
	if err != nil {
		_ = instance.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
