package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/storage"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/google/uuid"
)

type HeroService struct {
	Repo   *repo.GormRepo
	Images storage.ImageStore
}

type NewHero struct {
	Title      string
	Price      string
	ButtonText string
	IsActive   *bool
	Order      int
	Image      *Upload
}

func (s *HeroService) List(ctx context.Context, activeOnly bool) ([]models.HeroImage, error) {
	return s.Repo.ListHeroes(ctx, activeOnly)
}

func (s *HeroService) Create(ctx context.Context, in NewHero) (*models.HeroImage, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Image == nil {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	url, err := s.store(ctx, *in.Image)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	hero, err := s.Repo.CreateHero(ctx, &models.HeroImage{
		Title:      title,
		Price:      strings.TrimSpace(in.Price),
		ButtonText: strings.TrimSpace(in.ButtonText),
		ImageURL:   url,
		IsActive:   active,
		Order:      in.Order,
	})
	if err != nil {
		discard(ctx, s.Images, [][]string{{url}})
		return nil, err
	}
	return hero, nil
}

// Update patches the given fields; a new image replaces the stored one.
func (s *HeroService) Update(ctx context.Context, id uuid.UUID, req transport.PatchHeroRequest, image *Upload) (*models.HeroImage, error) {
	old, err := s.Repo.GetHero(ctx, id)
	if err != nil {
		return nil, notFound(err, "hero %s", id)
	}

	fields := make(map[string]any)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrValidation)
		}
		fields["title"] = title
	}
	if req.Price != nil {
		fields["price"] = strings.TrimSpace(*req.Price)
	}
	if req.ButtonText != nil {
		text := strings.TrimSpace(*req.ButtonText)
		if text == "" {
			text = models.DefaultHeroButtonText
		}
		fields["button_text"] = text
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Order != nil {
		fields["display_order"] = *req.Order
	}

	var newURL string
	if image != nil {
		if newURL, err = s.store(ctx, *image); err != nil {
			return nil, err
		}
		fields["image_url"] = newURL
	}

	hero, err := s.Repo.UpdateHero(ctx, id, fields)
	if err != nil {
		if newURL != "" {
			discard(ctx, s.Images, [][]string{{newURL}})
		}
		return nil, notFound(err, "hero %s", id)
	}
	if newURL != "" {
		discard(ctx, s.Images, [][]string{{old.ImageURL}})
	}
	return hero, nil
}

func (s *HeroService) Delete(ctx context.Context, id uuid.UUID) error {
	hero, err := s.Repo.DeleteHero(ctx, id)
	if err != nil {
		return notFound(err, "hero %s", id)
	}
	discard(ctx, s.Images, [][]string{{hero.ImageURL}})
	return nil
}

func (s *HeroService) store(ctx context.Context, up Upload) (string, error) {
	url, err := storeOne(ctx, s.Images, up)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return "", err
	}
	return url, nil
}
