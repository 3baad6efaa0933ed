package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
// Re-applying the current status is always allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentKhalti PaymentMethod = "Khalti"
)

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                            json:"_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"                        json:"userId"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"                     json:"amount"`
	Address       Address         `gorm:"type:text;serializer:json"                       json:"address"`
	PaymentMethod PaymentMethod   `gorm:"not null"                                        json:"paymentMethod"`
	Payment       bool            `gorm:"not null;default:false"                          json:"payment"`
	Status        OrderStatus     `gorm:"index;not null"                                  json:"status"`
	Pidx          string          `gorm:"index"                                           json:"pidx,omitempty"`
	CartCleared   bool            `gorm:"not null;default:false"                          json:"-"`
	CreatedAt     time.Time       `json:"date"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a snapshot taken at checkout; it never follows product edits.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"-"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"    json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"          json:"_id"`
	Name      string          `gorm:"not null"                    json:"name"`
	Shade     string          `json:"shade"`
	Quantity  int             `gorm:"not null"                    json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image     string          `json:"image"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}
