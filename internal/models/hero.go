package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultHeroButtonText = "SHOP NOW"

type HeroImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"             json:"_id"`
	Title      string    `gorm:"not null"                         json:"title"`
	Price      string    `json:"price"`
	ButtonText string    `gorm:"not null"                         json:"buttonText"`
	ImageURL   string    `gorm:"not null"                         json:"imageUrl"`
	IsActive   bool      `gorm:"not null"                         json:"isActive"`
	Order      int       `gorm:"column:display_order;default:0"   json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (h *HeroImage) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ButtonText == "" {
		h.ButtonText = DefaultHeroButtonText
	}
	return nil
}

func All() []any {
	return []any{&Product{}, &Shade{}, &Cart{}, &Order{}, &OrderItem{}, &HeroImage{}, &Notification{}, &Profile{}}
}
