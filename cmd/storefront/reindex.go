package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/search"
	pkgdb "github.com/Skotchmaster/beauty_shop/pkg/db"
)

func reindexCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the product search index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if batch < 1 {
				batch = 200
			}
			if cfg.ESURL == "" {
				return errors.New("ES_URL is not set")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pkgdb.Close(db)

			es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
			if err != nil {
				return err
			}
			idx := search.NewESSearcher(es, "")
			if err := idx.EnsureIndex(ctx); err != nil {
				return err
			}

			r := &repo.GormRepo{DB: db}
			indexed := 0
			for offset := 0; ; offset += batch {
				total, items, err := r.GetProducts(ctx, repo.ProductFilter{}, offset, batch)
				if err != nil {
					return err
				}
				for i := range items {
					if err := idx.Index(ctx, &items[i]); err != nil {
						return err
					}
					indexed++
				}
				if len(items) == 0 || int64(offset+batch) >= total {
					break
				}
			}

			logger.Info("reindex_success", "products", indexed)
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 200, "products read per page")
	return cmd
}
