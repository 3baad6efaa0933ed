package repo

import (
	"context"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// LoadProfile returns the profile of userID, creating an empty one first.
func (r *GormRepo) LoadProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(models.Profile{UserID: userID}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	if p.Addresses == nil {
		p.Addresses = []models.SavedAddress{}
	}
	return &p, nil
}

// SaveProfile overwrites the whole profile, addresses included. Like carts,
// concurrent writers for one user are last-write-wins.
func (r *GormRepo) SaveProfile(ctx context.Context, p *models.Profile) error {
	if p.Addresses == nil {
		p.Addresses = []models.SavedAddress{}
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "date_of_birth", "blood_group", "gender", "addresses", "updated_at"}),
	}).Create(p).Error
}
