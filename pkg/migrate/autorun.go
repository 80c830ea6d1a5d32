package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/packfinderz-metrics/pkg/config"
	"github.com/angelmondragon/packfinderz-metrics/pkg/db"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

// MaybeAutoRun applies pending migrations on startup when PFMETRICS_AUTO_MIGRATE
// is set. Production refuses to auto-migrate a Postgres database.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	driver := cfg.DB.DriverKind()
	if cfg.App.IsProd() && driver != enums.DBDriverSQLite {
		logg.Warn(ctx, "auto-migrate ignored in production")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	root := cfg.FeatureFlags.MigrationsDir
	if root == "" {
		root = DefaultDir
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": driver, "dir": DirFor(root, driver)})
	logg.Info(ctx, "running goose migrations (auto-run)")
	if err := Run(ctx, sqlDB, driver, root, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
