package service

import (
	"context"
	"fmt"
	"io"

	"github.com/Skotchmaster/beauty_shop/internal/storage"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// Upload is a file waiting to be stored. Open is called once.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

func storeOne(ctx context.Context, store storage.ImageStore, up Upload) (string, error) {
	rc, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", up.Filename, err)
	}
	defer rc.Close()

	url, err := store.Save(ctx, up.Filename, rc)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", up.Filename, err)
	}
	return url, nil
}

// storeAll uploads every group concurrently and returns the URLs in the
// same shape. If any upload fails the ones that finished are removed.
func storeAll(ctx context.Context, store storage.ImageStore, groups [][]Upload) ([][]string, error) {
	urls := make([][]string, len(groups))
	for i := range groups {
		urls[i] = make([]string, len(groups[i]))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range groups {
		for j := range groups[i] {
			i, j := i, j
			g.Go(func() error {
				url, err := storeOne(gctx, store, groups[i][j])
				if err != nil {
					return err
				}
				urls[i][j] = url
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		discard(ctx, store, urls)
		return nil, err
	}
	return urls, nil
}

func discard(ctx context.Context, store storage.ImageStore, groups [][]string) {
	l := logging.FromContext(ctx)
	for _, group := range groups {
		for _, url := range group {
			if url == "" {
				continue
			}
			if err := store.Delete(ctx, url); err != nil {
				l.Warn("image_cleanup_failed", "url", url, "error", err)
			}
		}
	}
}
