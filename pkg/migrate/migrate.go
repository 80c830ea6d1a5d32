package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// DefaultDir holds one migration directory per database driver.
const DefaultDir = "pkg/migrate/migrations"

// DirFor returns the driver's migration directory under root.
func DirFor(root string, driver enums.DBDriver) string {
	return filepath.Join(root, string(driver))
}

func gooseDialect(driver enums.DBDriver) (string, error) {
	switch driver {
	case enums.DBDriverPostgres:
		return "postgres", nil
	case enums.DBDriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("no migration dialect for driver %q", driver)
}

func setDialect(driver enums.DBDriver) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Run executes a goose command against the driver's migrations under root.
func Run(ctx context.Context, db *sql.DB, driver enums.DBDriver, root string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if root == "" {
		return fmt.Errorf("dir is required")
	}
	if err := setDialect(driver); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, DirFor(root, driver), args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver enums.DBDriver, root string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	if err := setDialect(driver); err != nil {
		return err
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	dir := DirFor(root, driver)
	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
