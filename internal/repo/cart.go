package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadCart returns an empty cart for users that never saved one.
func (r *GormRepo) LoadCart(ctx context.Context, userID uuid.UUID) (models.CartData, error) {
	var doc models.Cart
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CartData{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Data == nil {
		doc.Data = models.CartData{}
	}
	return doc.Data, nil
}

// SaveCart overwrites the whole document. Concurrent writers for the same
// user are last-write-wins.
func (r *GormRepo) SaveCart(ctx context.Context, userID uuid.UUID, data models.CartData) error {
	if data == nil {
		data = models.CartData{}
	}
	doc := models.Cart{UserID: userID, Data: data}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
}
