package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/storage"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSearcher is the full-text index kept next to the catalog table.
type ProductSearcher interface {
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Images storage.ImageStore
	Search ProductSearcher
	Events events.Publisher
}

type NewShade struct {
	Name      string
	ColorCode string
	Images    []Upload
}

type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Brand       string
	Category    models.Category
	Bestseller  bool
	Images      []Upload
	Shades      []NewShade
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product %s", id)
	}
	return p, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	if f.Category != "" && !f.Category.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown category %q", ErrValidation, f.Category)
	}
	return s.Repo.GetProducts(ctx, f, offset, limit)
}

// SearchProducts asks the search index first and falls back to the
// database when there is no index or it fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query is empty", ErrValidation)
	}

	if s.Search != nil {
		total, ids, err := s.Search.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "query", q, "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func validateNewProduct(in *NewProduct) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be > 0", ErrValidation)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	if len(in.Images) == 0 {
		return fmt.Errorf("%w: at least one product image is required", ErrValidation)
	}
	if len(in.Images) > models.MaxProductImages {
		return fmt.Errorf("%w: at most %d product images", ErrValidation, models.MaxProductImages)
	}

	seen := make(map[string]bool, len(in.Shades))
	for i := range in.Shades {
		sh := &in.Shades[i]
		sh.Name = strings.TrimSpace(sh.Name)
		if sh.Name == "" {
			return fmt.Errorf("%w: shade %d has no name", ErrValidation, i+1)
		}
		if seen[sh.Name] {
			return fmt.Errorf("%w: duplicate shade %q", ErrValidation, sh.Name)
		}
		seen[sh.Name] = true

		sh.ColorCode = strings.TrimSpace(sh.ColorCode)
		if sh.ColorCode == "" {
			sh.ColorCode = models.DefaultShadeHex
		}
		if !hexColor.MatchString(sh.ColorCode) {
			return fmt.Errorf("%w: shade %q has invalid color %q", ErrValidation, sh.Name, sh.ColorCode)
		}
		if len(sh.Images) == 0 {
			return fmt.Errorf("%w: shade %q needs at least one image", ErrValidation, sh.Name)
		}
		if len(sh.Images) > models.MaxShadeImages {
			return fmt.Errorf("%w: shade %q has more than %d images", ErrValidation, sh.Name, models.MaxShadeImages)
		}
	}
	return nil
}

// CreateProduct stores every image first; the product row is written only
// when all uploads succeeded.
func (s *CatalogService) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	if err := validateNewProduct(&in); err != nil {
		return nil, err
	}

	groups := make([][]Upload, 0, len(in.Shades)+1)
	groups = append(groups, in.Images)
	for _, sh := range in.Shades {
		groups = append(groups, sh.Images)
	}

	urls, err := storeAll(ctx, s.Images, groups)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, err
	}

	prod := &models.Product{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Brand:       strings.TrimSpace(in.Brand),
		Category:    in.Category,
		Bestseller:  in.Bestseller,
		Images:      urls[0],
		Shades:      make([]models.Shade, 0, len(in.Shades)),
	}
	for i, sh := range in.Shades {
		prod.Shades = append(prod.Shades, models.Shade{
			Name:      sh.Name,
			ColorCode: sh.ColorCode,
			Images:    urls[i+1],
		})
	}

	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		discard(ctx, s.Images, urls)
		return nil, err
	}

	s.index(ctx, created)
	publish(ctx, s.Events, events.TopicProducts, created.ID.String(), events.ProductEvent{
		Type:      "product_created",
		ProductID: created.ID.String(),
		Name:      created.Name,
	})
	return created, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	fields := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, fmt.Errorf("%w: price must be > 0", ErrValidation)
		}
		fields["price"] = *req.Price
	}
	if req.Brand != nil {
		fields["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *req.Category)
		}
		fields["category"] = *req.Category
	}
	if req.Bestseller != nil {
		fields["bestseller"] = *req.Bestseller
	}

	prod, err := s.Repo.PatchProduct(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "product %s", id)
	}

	s.index(ctx, prod)
	publish(ctx, s.Events, events.TopicProducts, prod.ID.String(), events.ProductEvent{
		Type:      "product_updated",
		ProductID: prod.ID.String(),
		Name:      prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	prod, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return notFound(err, "product %s", id)
	}

	l := logging.FromContext(ctx)
	if s.Search != nil {
		if err := s.Search.Delete(ctx, id); err != nil {
			l.Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}

	urls := [][]string{prod.Images}
	for _, sh := range prod.Shades {
		urls = append(urls, sh.Images)
	}
	discard(ctx, s.Images, urls)

	publish(ctx, s.Events, events.TopicProducts, id.String(), events.ProductEvent{
		Type:      "product_deleted",
		ProductID: id.String(),
		Name:      prod.Name,
	})
	return nil
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}
