package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

// ErrItemNotFound is returned when a quantity change names a product that is
// not in the cart.
var ErrItemNotFound = errors.New("line item not found")

// LineItem is one product-and-quantity entry in a cart.
type LineItem struct {
	ProductID      uuid.UUID
	Name           string
	UnitPriceCents int64
	Quantity       int
}

// Cart accumulates line items for a checkout session. Items keep insertion
// order, and no two items share a product ID: adding an existing product
// increments its line instead of appending a duplicate.
//
// Totals are computed on decimals and rounded only when rendered or
// persisted, so per-line rounding error cannot compound.
type Cart struct {
	items   []LineItem
	taxRate decimal.Decimal
}

// New creates an empty cart with the given tax rate (e.g. 0.10).
func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

// AddItem puts one unit of the product into the cart. If a line for the
// product already exists its quantity goes up by one.
func (c *Cart) AddItem(productID uuid.UUID, name string, unitPriceCents int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, LineItem{
		ProductID:      productID,
		Name:           name,
		UnitPriceCents: unitPriceCents,
		Quantity:       1,
	})
}

// ChangeQuantity adjusts a line's quantity by delta, clamping at zero. A
// line that reaches zero is removed from the cart.
func (c *Cart) ChangeQuantity(productID uuid.UUID, delta int) error {
	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		next := c.items[i].Quantity + delta
		if next <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
		c.items[i].Quantity = next
		return nil
	}
	return ErrItemNotFound
}

// Items returns a copy of the line items in display order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Clear drops every line. Called after a successful checkout or a cancelled
// session.
func (c *Cart) Clear() {
	c.items = nil
}

// TaxRate returns the rate applied by Tax.
func (c *Cart) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Subtotal is the exact sum of unit price times quantity across all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		line := money.FromCents(item.UnitPriceCents).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum
}

// Tax is the subtotal multiplied by the cart's tax rate, unrounded.
func (c *Cart) Tax() decimal.Decimal {
	return c.Subtotal().Mul(c.taxRate)
}

// Total is subtotal plus tax, unrounded.
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.Tax())
}
