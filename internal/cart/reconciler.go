package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrShadeRequired   = errors.New("cart: shade is required")
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")
	ErrProductNotFound = errors.New("cart: product not found")
	ErrShadeNotFound   = errors.New("cart: shade not found on product")
	// ErrMirror wraps a failed server sync. The local change is kept.
	ErrMirror = errors.New("cart: server sync failed")
)

// Mirror is the server-side copy of an authenticated user's cart.
type Mirror interface {
	LoadCart(ctx context.Context) (models.CartData, error)
	AddToCart(ctx context.Context, productID uuid.UUID, shade string, qty int) error
	UpdateCart(ctx context.Context, productID uuid.UUID, shade string, qty int) error
	RemoveFromCart(ctx context.Context, productID uuid.UUID, shade string) error
}

// Reconciler owns the local cart of one session. Local state is updated
// first and is the source of truth for the caller; the mirror, when a user
// is logged in, follows and may lag.
type Reconciler struct {
	mu      sync.Mutex
	cart    *Cart
	catalog Catalog
	mirror  Mirror
}

func NewReconciler(catalog Catalog) *Reconciler {
	return &Reconciler{cart: New(), catalog: catalog}
}

// SetCatalog swaps the product list, e.g. after a refresh.
func (r *Reconciler) SetCatalog(c Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = c
}

func (r *Reconciler) lookupShade(productID uuid.UUID, shade string) (*models.Product, *models.Shade, error) {
	if r.catalog == nil {
		return nil, nil, ErrProductNotFound
	}
	p, ok := r.catalog.FindProduct(productID)
	if !ok {
		return nil, nil, ErrProductNotFound
	}
	s, ok := p.FindShade(shade)
	if !ok {
		return p, nil, fmt.Errorf("%w: %q", ErrShadeNotFound, shade)
	}
	return p, s, nil
}

func (r *Reconciler) AddToCart(ctx context.Context, productID uuid.UUID, shade string, qty int) error {
	shade = strings.TrimSpace(shade)
	if shade == "" {
		return ErrShadeRequired
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	r.mu.Lock()
	_, s, err := r.lookupShade(productID, shade)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.cart.Add(productID, shade, qty, SnapshotOf(s))
	m := r.mirror
	r.mu.Unlock()

	if m == nil {
		return nil
	}
	if err := m.AddToCart(ctx, productID, shade, qty); err != nil {
		return fmt.Errorf("%w: %w", ErrMirror, err)
	}
	return nil
}

// UpdateCart overwrites the quantity; qty <= 0 removes the entry. When the
// product no longer resolves, an existing entry keeps its cached snapshot.
func (r *Reconciler) UpdateCart(ctx context.Context, productID uuid.UUID, shade string, qty int) error {
	if qty <= 0 {
		return r.RemoveFromCart(ctx, productID, shade)
	}
	shade = strings.TrimSpace(shade)
	if shade == "" {
		return ErrShadeRequired
	}

	r.mu.Lock()
	_, s, err := r.lookupShade(productID, shade)
	var snap ShadeSnapshot
	switch {
	case err == nil:
		snap = SnapshotOf(s)
	case errors.Is(err, ErrProductNotFound):
		prev, ok := r.cart.Get(productID, shade)
		if !ok {
			r.mu.Unlock()
			return err
		}
		snap = prev.Shade
	default:
		r.mu.Unlock()
		return err
	}
	r.cart.Set(productID, shade, qty, snap)
	m := r.mirror
	r.mu.Unlock()

	if m == nil {
		return nil
	}
	if err := m.UpdateCart(ctx, productID, shade, qty); err != nil {
		return fmt.Errorf("%w: %w", ErrMirror, err)
	}
	return nil
}

// RemoveFromCart never fails for a missing entry; only a mirror error is
// returned.
func (r *Reconciler) RemoveFromCart(ctx context.Context, productID uuid.UUID, shade string) error {
	shade = strings.TrimSpace(shade)
	r.mu.Lock()
	r.cart.Remove(productID, shade)
	m := r.mirror
	r.mu.Unlock()

	if m == nil {
		return nil
	}
	if err := m.RemoveFromCart(ctx, productID, shade); err != nil {
		return fmt.Errorf("%w: %w", ErrMirror, err)
	}
	return nil
}

// GetUserCart replaces the local cart with the hydrated server copy. It is
// a no-op for anonymous sessions.
func (r *Reconciler) GetUserCart(ctx context.Context) error {
	r.mu.Lock()
	m := r.mirror
	r.mu.Unlock()
	if m == nil {
		return nil
	}

	data, err := m.LoadCart(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMirror, err)
	}

	r.mu.Lock()
	r.cart = Hydrate(data, r.catalog)
	r.mu.Unlock()
	return nil
}

// Login attaches the session's mirror and merges carts: server entries win
// for keys present on both sides, local-only entries whose shade still
// exists are pushed to the server. Entries that fail to push stay local.
func (r *Reconciler) Login(ctx context.Context, m Mirror) error {
	if m == nil {
		return errors.New("cart: nil mirror")
	}

	data, err := m.LoadCart(ctx)
	if err != nil {
		r.mu.Lock()
		r.mirror = m
		r.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrMirror, err)
	}

	r.mu.Lock()
	merged := Hydrate(data, r.catalog)
	var push []Line
	for _, ln := range r.cart.Lines() {
		if _, ok := merged.Get(ln.ProductID, ln.ShadeName); ok {
			continue
		}
		_, s, err := r.lookupShade(ln.ProductID, ln.ShadeName)
		if err != nil {
			continue
		}
		merged.Set(ln.ProductID, ln.ShadeName, ln.Quantity, SnapshotOf(s))
		push = append(push, ln)
	}
	r.cart = merged
	r.mirror = m
	r.mu.Unlock()

	var errs []error
	for _, ln := range push {
		if err := m.AddToCart(ctx, ln.ProductID, ln.ShadeName, ln.Quantity); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMirror, errors.Join(errs...))
	}
	return nil
}

// Logout detaches the mirror and drops the local cart.
func (r *Reconciler) Logout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirror = nil
	r.cart.Clear()
}

// Clear empties the local cart only, as after a placed order whose server
// copy was cleared by the order pipeline.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.Clear()
}

func (r *Reconciler) GetCartCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart.Count()
}

func (r *Reconciler) GetTotalCartAmount() decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart.Total(Prices(r.catalog))
}

func (r *Reconciler) Snapshot() *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart.Clone()
}

// OrderItems converts the cart into checkout line items priced from the
// catalog. Entries whose product no longer resolves are skipped.
func (r *Reconciler) OrderItems() []models.OrderItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []models.OrderItem
	for _, ln := range r.cart.Lines() {
		if r.catalog == nil {
			break
		}
		p, ok := r.catalog.FindProduct(ln.ProductID)
		if !ok {
			continue
		}
		image := p.MainImage()
		if len(ln.Shade.Images) > 0 {
			image = ln.Shade.Images[0]
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Shade:     ln.ShadeName,
			Quantity:  ln.Quantity,
			UnitPrice: p.Price,
			Image:     image,
		})
	}
	return items
}
