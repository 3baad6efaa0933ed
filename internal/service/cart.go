package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/cart"
	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
)

// CartStore persists one cart document per user. SaveCart overwrites it.
type CartStore interface {
	LoadCart(ctx context.Context, userID uuid.UUID) (models.CartData, error)
	SaveCart(ctx context.Context, userID uuid.UUID, data models.CartData) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CartService is the server end of the cart mirror. Every call is a
// read-modify-write of the whole document; concurrent writes for the same
// user are last-write-wins.
type CartService struct {
	Store    CartStore
	Products ProductReader
	Events   events.Publisher
}

func (s *CartService) load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	data, err := s.Store.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.FromData(data), nil
}

func (s *CartService) shade(ctx context.Context, productID uuid.UUID, name string) (*models.Shade, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: item id is required", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: shade is required", ErrValidation)
	}
	p, err := s.Products.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product %s", productID)
	}
	sh, ok := p.FindShade(name)
	if !ok {
		return nil, fmt.Errorf("%w: shade %q of product %s", ErrNotFound, name, productID)
	}
	return sh, nil
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (models.CartData, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Data(), nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, shade string, qty int) (models.CartData, error) {
	shade = strings.TrimSpace(shade)
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	sh, err := s.shade(ctx, productID, shade)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := c.Add(productID, shade, qty, cart.SnapshotOf(sh))
	if err := s.Store.SaveCart(ctx, userID, c.Data()); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, "cart_item_added", productID, shade, total)
	return c.Data(), nil
}

// UpdateCart overwrites the quantity; qty <= 0 removes the entry.
func (s *CartService) UpdateCart(ctx context.Context, userID, productID uuid.UUID, shade string, qty int) (models.CartData, error) {
	shade = strings.TrimSpace(shade)
	if qty <= 0 {
		return s.RemoveFromCart(ctx, userID, productID, shade)
	}
	sh, err := s.shade(ctx, productID, shade)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.Set(productID, shade, qty, cart.SnapshotOf(sh))
	if err := s.Store.SaveCart(ctx, userID, c.Data()); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, "cart_item_updated", productID, shade, qty)
	return c.Data(), nil
}

// RemoveFromCart does not look at the catalog so entries of deleted
// products can still be removed. Removing a missing entry is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID, shade string) (models.CartData, error) {
	shade = strings.TrimSpace(shade)
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: item id is required", ErrValidation)
	}
	if shade == "" {
		return nil, fmt.Errorf("%w: shade is required", ErrValidation)
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !c.Remove(productID, shade) {
		return c.Data(), nil
	}
	if err := s.Store.SaveCart(ctx, userID, c.Data()); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, "cart_item_removed", productID, shade, 0)
	return c.Data(), nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := s.Store.SaveCart(ctx, userID, models.CartData{}); err != nil {
		return err
	}
	s.publish(ctx, userID, "cart_cleared", uuid.Nil, "", 0)
	return nil
}

func (s *CartService) publish(ctx context.Context, userID uuid.UUID, typ string, productID uuid.UUID, shade string, qty int) {
	ev := events.CartEvent{
		Type:     typ,
		UserID:   userID.String(),
		Shade:    shade,
		Quantity: qty,
	}
	if productID != uuid.Nil {
		ev.ProductID = productID.String()
	}
	publish(ctx, s.Events, events.TopicCart, userID.String(), ev)
}
