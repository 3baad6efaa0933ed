package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/beauty_shop/internal/repo"
	pkgdb "github.com/Skotchmaster/beauty_shop/pkg/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pkgdb.Close(db)

			if err := (&repo.GormRepo{DB: db}).Migrate(ctx); err != nil {
				return err
			}
			logger.Info("migrate_success")
			return nil
		},
	}
}
