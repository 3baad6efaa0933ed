package transport

import (
	"encoding/json"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Brand       *string          `json:"brand"`
	Category    *models.Category `json:"category"`
	Bestseller  *bool            `json:"bestseller"`
}

type CartItemRequest struct {
	ItemID   uuid.UUID `json:"itemId"`
	Shade    string    `json:"shade"`
	Quantity int       `json:"quantity"`
}

type CartResponse struct {
	Success  bool            `json:"success"`
	CartData models.CartData `json:"cartData"`
	Count    int             `json:"count"`
	Currency string          `json:"currency"`
}

// ImageRef accepts either a single URL or a list of URLs and keeps the
// first one.
type ImageRef string

func (r *ImageRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ImageRef(strings.TrimSpace(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*r = ""
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			*r = ImageRef(v)
			break
		}
	}
	return nil
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Shade     string    `json:"shade"`
	Quantity  int       `json:"quantity"`
	Image     ImageRef  `json:"image"`
}

type PlaceOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	Amount        *decimal.Decimal   `json:"amount"`
	Address       *models.Address    `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`

	// AddressID picks a saved profile address when Address is absent.
	AddressID *uuid.UUID `json:"addressId"`
}

// VerifyPaymentRequest carries the Khalti pidx. Older clients send it as
// token.
type VerifyPaymentRequest struct {
	Pidx  string `json:"pidx"`
	Token string `json:"token"`
}

func (r VerifyPaymentRequest) PaymentToken() string {
	if pidx := strings.TrimSpace(r.Pidx); pidx != "" {
		return pidx
	}
	return r.Token
}

type UpdateStatusRequest struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
}

type PatchHeroRequest struct {
	Title      *string `json:"title"`
	Price      *string `json:"price"`
	ButtonText *string `json:"buttonText"`
	IsActive   *bool   `json:"isActive"`
	Order      *int    `json:"order"`
}

// SendNotificationRequest targets "all" (one broadcast) or "specific"
// (one notification per entry of UserIDs).
type SendNotificationRequest struct {
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Target  string      `json:"target"`
	UserIDs []uuid.UUID `json:"userIds"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewPageMeta(page, offset, limit int, total int64) PageMeta {
	return PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

// UpdateProfileRequest changes only the fields present. DateOfBirth is
// YYYY-MM-DD or RFC 3339; an empty value clears it.
type UpdateProfileRequest struct {
	FullName    *string `json:"fullName"`
	DateOfBirth *string `json:"dateOfBirth"`
	BloodGroup  *string `json:"bloodGroup"`
	Gender      *string `json:"gender"`
}

type AddressRequest struct {
	Type string `json:"type"`
	models.Address
}
