package models

import (
	"time"

	"github.com/google/uuid"
)

type CartLine struct {
	Quantity int `json:"quantity" bson:"quantity"`
}

// CartData is the persisted cart document: product id -> shade name -> line.
type CartData map[string]map[string]CartLine

type Cart struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"       json:"userId"`
	Data      CartData  `gorm:"type:text;serializer:json"  json:"cartData"`
	UpdatedAt time.Time `json:"updatedAt"`
}
