package migrate

import (
	"context"
	"fmt"

	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

// MaybeRunDev applies the bundled schema on API start in dev when
// HAMPERHOUSE_AUTO_MIGRATE is on. Other environments run cmd/migrate
// as a release step.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	files, err := Scan(DefaultDir)
	if err != nil {
		return fmt.Errorf("scan migrations: %w", err)
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "files": len(files)})
	logg.Info(ctx, "applying storefront schema (dev auto-migrate)")
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "storefront schema up to date")
	return nil
}
