package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryFace  Category = "Face"
	CategoryEyes  Category = "Eyes"
	CategoryLips  Category = "Lips"
	CategoryTools Category = "Tools"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFace, CategoryEyes, CategoryLips, CategoryTools:
		return true
	}
	return false
}

const (
	MaxProductImages = 4
	MaxShadeImages   = 4
	DefaultShadeHex  = "#FFFFFF"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                              json:"_id"`
	Name        string          `gorm:"not null"                                          json:"name"`
	Description string          `gorm:"not null"                                          json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"                       json:"price"`
	Brand       string          `gorm:"index"                                             json:"brand"`
	Category    Category        `gorm:"index;not null"                                    json:"category"`
	Images      []string        `gorm:"type:text;serializer:json"                         json:"image"`
	Bestseller  bool            `gorm:"not null;default:false"                            json:"bestseller"`
	Shades      []Shade         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"shades"`
	CreatedAt   time.Time       `json:"date"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Shade names are unique per product, not globally.
type Shade struct {
	ID        uint      `gorm:"primaryKey"                                      json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shade_name"   json:"-"`
	Name      string    `gorm:"not null;uniqueIndex:idx_shade_name"             json:"name"`
	Position  int       `gorm:"not null;default:0"                              json:"-"`
	ColorCode string    `gorm:"not null"                                        json:"colorCode"`
	Images    []string  `gorm:"type:text;serializer:json"                       json:"image"`
}

func (p *Product) FindShade(name string) (*Shade, bool) {
	for i := range p.Shades {
		if p.Shades[i].Name == name {
			return &p.Shades[i], true
		}
	}
	return nil, false
}

func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
