package cart

import (
	"fmt"
	"slices"

	"github.com/example/storefront/internal/domain/product"
)

// Line is one cart row: a single product variant and its quantity.
type Line struct {
	Key     string          `json:"key"`
	Product product.Product `json:"product"`
	Color   string          `json:"color"`
	Size    string          `json:"size"`
	Qty     int             `json:"qty"`
}

// Cart is an ordered list of lines with unique keys. Every operation returns a new
// Cart and leaves the receiver untouched; an operation that changes nothing returns
// the receiver itself.
type Cart []Line

// LineKey identifies a variant of a product within a cart.
func LineKey(productID int, color, size string) string {
	return fmt.Sprintf("%d-%s-%s", productID, color, size)
}

// Find returns the line with the given key and its index.
func (c Cart) Find(key string) (Line, int, bool) {
	for i, line := range c {
		if line.Key == key {
			return line, i, true
		}
	}
	return Line{}, -1, false
}

// Add puts qty units of a variant into the cart. Sold-out or unknown variants leave
// the cart unchanged, as does a variant whose key collides with a different
// variant's line. Quantities are clamped to the variant's stock; a repeat add
// merges into the existing line.
func (c Cart) Add(p product.Product, color, size string, qty int) Cart {
	stock := p.StockFor(color, size)
	if stock <= 0 {
		return c
	}
	if qty < 1 {
		qty = 1
	}

	key := LineKey(p.ID, color, size)
	if existing, idx, ok := c.Find(key); ok {
		if existing.Color != color || existing.Size != size {
			return c
		}
		next := min(existing.Qty+qty, stock)
		if next == existing.Qty {
			return c
		}
		out := slices.Clone(c)
		out[idx].Qty = next
		return out
	}

	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, Line{
		Key:     key,
		Product: p,
		Color:   color,
		Size:    size,
		Qty:     min(qty, stock),
	})
}

// UpdateQty sets a line's quantity to max(1, min(qty, stock)). When current is the
// line's product as it is now, its stock is used and the line's snapshot refreshed;
// otherwise the stock recorded on the snapshot applies. A line whose variant has no
// stock left is removed.
func (c Cart) UpdateQty(key string, qty int, current *product.Product) Cart {
	line, idx, ok := c.Find(key)
	if !ok {
		return c
	}

	snapshot := line.Product
	if current != nil && current.ID == line.Product.ID {
		snapshot = *current
	}

	stock := snapshot.StockFor(line.Color, line.Size)
	if stock <= 0 {
		return c.Remove(key)
	}

	out := slices.Clone(c)
	out[idx].Qty = max(1, min(qty, stock))
	out[idx].Product = snapshot
	return out
}

// Remove deletes a line. Unknown keys are ignored.
func (c Cart) Remove(key string) Cart {
	_, idx, ok := c.Find(key)
	if !ok {
		return c
	}
	out := make(Cart, 0, len(c)-1)
	out = append(out, c[:idx]...)
	return append(out, c[idx+1:]...)
}

// Count is the total number of units across lines.
func (c Cart) Count() int {
	total := 0
	for _, line := range c {
		total += line.Qty
	}
	return total
}

// Equal compares line identity and quantities; product snapshots are compared by id.
func (c Cart) Equal(other Cart) bool {
	return slices.EqualFunc(c, other, func(a, b Line) bool {
		return a.Key == b.Key && a.Qty == b.Qty && a.Color == b.Color &&
			a.Size == b.Size && a.Product.ID == b.Product.ID
	})
}
