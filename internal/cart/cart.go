// Package cart holds the shade-keyed shopping cart and the reconciler that
// keeps a local cart in step with the server copy.
package cart

import (
	"encoding/json"
	"sort"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShadeSnapshot is display data copied from the catalog when an entry is
// written. It is never used to validate anything.
type ShadeSnapshot struct {
	Name      string   `json:"name"`
	ColorCode string   `json:"colorCode,omitempty"`
	Images    []string `json:"image,omitempty"`
}

func SnapshotOf(s *models.Shade) ShadeSnapshot {
	snap := ShadeSnapshot{Name: s.Name, ColorCode: s.ColorCode}
	if len(s.Images) > 0 {
		snap.Images = append([]string(nil), s.Images...)
	}
	return snap
}

func stub(shade string) ShadeSnapshot {
	return ShadeSnapshot{Name: shade}
}

type Entry struct {
	Quantity int           `json:"quantity"`
	Shade    ShadeSnapshot `json:"shadeData"`
}

type Line struct {
	ProductID uuid.UUID
	ShadeName string
	Entry
}

// Cart maps product id -> shade name -> entry. Entries with a non-positive
// quantity are removed, and a product key never outlives its last shade.
type Cart struct {
	items map[uuid.UUID]map[string]Entry
}

func New() *Cart {
	return &Cart{items: make(map[uuid.UUID]map[string]Entry)}
}

func (c *Cart) Get(productID uuid.UUID, shade string) (Entry, bool) {
	e, ok := c.items[productID][shade]
	return e, ok
}

// Add increments the entry and replaces its snapshot. It returns the new
// quantity.
func (c *Cart) Add(productID uuid.UUID, shade string, qty int, snap ShadeSnapshot) int {
	if qty <= 0 {
		e, _ := c.Get(productID, shade)
		return e.Quantity
	}
	shades, ok := c.items[productID]
	if !ok {
		shades = make(map[string]Entry)
		c.items[productID] = shades
	}
	e := shades[shade]
	e.Quantity += qty
	e.Shade = snap
	shades[shade] = e
	return e.Quantity
}

// Set overwrites the quantity; qty <= 0 removes the entry.
func (c *Cart) Set(productID uuid.UUID, shade string, qty int, snap ShadeSnapshot) {
	if qty <= 0 {
		c.Remove(productID, shade)
		return
	}
	shades, ok := c.items[productID]
	if !ok {
		shades = make(map[string]Entry)
		c.items[productID] = shades
	}
	shades[shade] = Entry{Quantity: qty, Shade: snap}
}

// Remove reports whether an entry was deleted. Missing entries are a no-op.
func (c *Cart) Remove(productID uuid.UUID, shade string) bool {
	shades, ok := c.items[productID]
	if !ok {
		return false
	}
	if _, ok := shades[shade]; !ok {
		return false
	}
	delete(shades, shade)
	if len(shades) == 0 {
		delete(c.items, productID)
	}
	return true
}

func (c *Cart) Clear() {
	c.items = make(map[uuid.UUID]map[string]Entry)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) HasProduct(productID uuid.UUID) bool {
	_, ok := c.items[productID]
	return ok
}

// Count is the sum of all quantities.
func (c *Cart) Count() int {
	n := 0
	for _, shades := range c.items {
		for _, e := range shades {
			n += e.Quantity
		}
	}
	return n
}

// PriceFunc resolves the current unit price of a product.
type PriceFunc func(productID uuid.UUID) (decimal.Decimal, bool)

// Total sums price * quantity. Products that no longer resolve are left out.
func (c *Cart) Total(price PriceFunc) decimal.Decimal {
	total := decimal.Zero
	for pid, shades := range c.items {
		p, ok := price(pid)
		if !ok {
			continue
		}
		for _, e := range shades {
			total = total.Add(p.Mul(decimal.NewFromInt(int64(e.Quantity))))
		}
	}
	return total
}

// Lines returns every entry ordered by product id, then shade name.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.items))
	for pid, shades := range c.items {
		for name, e := range shades {
			out = append(out, Line{ProductID: pid, ShadeName: name, Entry: e})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ProductID.String(), out[j].ProductID.String()
		if a != b {
			return a < b
		}
		return out[i].ShadeName < out[j].ShadeName
	})
	return out
}

func (c *Cart) Clone() *Cart {
	cp := New()
	for pid, shades := range c.items {
		inner := make(map[string]Entry, len(shades))
		for name, e := range shades {
			e.Shade.Images = append([]string(nil), e.Shade.Images...)
			inner[name] = e
		}
		cp.items[pid] = inner
	}
	return cp
}

// Data drops the snapshots and returns the persisted form.
func (c *Cart) Data() models.CartData {
	out := make(models.CartData, len(c.items))
	for pid, shades := range c.items {
		inner := make(map[string]models.CartLine, len(shades))
		for name, e := range shades {
			inner[name] = models.CartLine{Quantity: e.Quantity}
		}
		out[pid.String()] = inner
	}
	return out
}

// FromData builds a cart from the persisted form with stub snapshots.
// Keys that are not product ids and non-positive quantities are dropped.
func FromData(d models.CartData) *Cart {
	return Hydrate(d, nil)
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]Entry, len(c.items))
	for pid, shades := range c.items {
		out[pid.String()] = shades
	}
	return json.Marshal(out)
}

func (c *Cart) UnmarshalJSON(b []byte) error {
	var raw map[string]map[string]Entry
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Clear()
	for key, shades := range raw {
		pid, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		for name, e := range shades {
			c.Set(pid, name, e.Quantity, e.Shade)
		}
	}
	return nil
}
