package repo

import (
	"context"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *GormRepo) ListHeroes(ctx context.Context, activeOnly bool) ([]models.HeroImage, error) {
	q := r.DB.WithContext(ctx).Model(&models.HeroImage{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	heroes := make([]models.HeroImage, 0)
	if err := q.Order("display_order ASC").Order("created_at DESC").Find(&heroes).Error; err != nil {
		return nil, err
	}
	return heroes, nil
}

func (r *GormRepo) GetHero(ctx context.Context, id uuid.UUID) (*models.HeroImage, error) {
	var hero models.HeroImage
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&hero).Error; err != nil {
		return nil, err
	}
	return &hero, nil
}

func (r *GormRepo) CreateHero(ctx context.Context, hero *models.HeroImage) (*models.HeroImage, error) {
	if err := r.DB.WithContext(ctx).Create(hero).Error; err != nil {
		return nil, err
	}
	return hero, nil
}

func (r *GormRepo) UpdateHero(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.HeroImage, error) {
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.HeroImage{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetHero(ctx, id)
}

func (r *GormRepo) DeleteHero(ctx context.Context, id uuid.UUID) (*models.HeroImage, error) {
	hero, err := r.GetHero(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&models.HeroImage{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return hero, nil
}
