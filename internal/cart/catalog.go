package cart

import (
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog is a synchronous product lookup over an already loaded product
// list.
type Catalog interface {
	FindProduct(id uuid.UUID) (*models.Product, bool)
}

// Index is an in-memory Catalog.
type Index map[uuid.UUID]*models.Product

func NewIndex(products []models.Product) Index {
	idx := make(Index, len(products))
	for i := range products {
		idx[products[i].ID] = &products[i]
	}
	return idx
}

func (idx Index) FindProduct(id uuid.UUID) (*models.Product, bool) {
	p, ok := idx[id]
	return p, ok
}

// Prices adapts a Catalog into a PriceFunc.
func Prices(c Catalog) PriceFunc {
	return func(id uuid.UUID) (decimal.Decimal, bool) {
		if c == nil {
			return decimal.Zero, false
		}
		p, ok := c.FindProduct(id)
		if !ok {
			return decimal.Zero, false
		}
		return p.Price, true
	}
}

// Hydrate rebuilds display snapshots for a persisted cart. A shade whose
// product or name no longer resolves gets the stub {name: shadeName}
// instead of failing the whole load.
func Hydrate(d models.CartData, c Catalog) *Cart {
	out := New()
	for key, shades := range d {
		pid, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		var product *models.Product
		if c != nil {
			product, _ = c.FindProduct(pid)
		}
		for name, line := range shades {
			if line.Quantity <= 0 {
				continue
			}
			snap := stub(name)
			if product != nil {
				if s, ok := product.FindShade(name); ok {
					snap = SnapshotOf(s)
				}
			}
			out.Set(pid, name, line.Quantity, snap)
		}
	}
	return out
}
