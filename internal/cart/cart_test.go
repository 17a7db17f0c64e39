package cart

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

func taxRate(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse rate %q: %v", raw, err)
	}
	return rate
}

func TestAddItemMergesExistingLine(t *testing.T) {
	c := New(taxRate(t, "0.10"))
	productID := uuid.New()

	c.AddItem(productID, "Laptop", 99999)
	c.AddItem(productID, "Laptop", 99999)
	c.AddItem(uuid.New(), "Mouse", 4999)

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", items[0].Quantity)
	}
	if items[0].Name != "Laptop" {
		t.Fatalf("expected insertion order preserved, got %q first", items[0].Name)
	}
}

func TestChangeQuantityAdjustsAndRemoves(t *testing.T) {
	c := New(taxRate(t, "0.10"))
	productID := uuid.New()
	c.AddItem(productID, "Keyboard", 12999)

	if err := c.ChangeQuantity(productID, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Items()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}

	if err := c.ChangeQuantity(productID, -5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected cart empty after quantity reached zero")
	}
}

func TestChangeQuantityClampsBelowZero(t *testing.T) {
	c := New(taxRate(t, "0.10"))
	productID := uuid.New()
	c.AddItem(productID, "Cable", 999)

	if err := c.ChangeQuantity(productID, -10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected line removed when quantity dropped below zero")
	}
}

func TestChangeQuantityUnknownProduct(t *testing.T) {
	c := New(taxRate(t, "0.10"))
	c.AddItem(uuid.New(), "Charger", 2500)

	err := c.ChangeQuantity(uuid.New(), 1)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestTotalsWorkedExample(t *testing.T) {
	// One 999.99 item plus two 379.99 items at a 10% rate.
	c := New(taxRate(t, "0.10"))
	laptop := uuid.New()
	monitor := uuid.New()

	c.AddItem(laptop, "Laptop", 99999)
	c.AddItem(monitor, "Monitor", 37999)
	if err := c.ChangeQuantity(monitor, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := money.Format(money.ToCents(c.Subtotal())); got != "1759.97" {
		t.Fatalf("subtotal: expected 1759.97, got %s", got)
	}
	if got := money.Format(money.ToCents(c.Tax())); got != "176.00" {
		t.Fatalf("tax: expected 176.00, got %s", got)
	}
	if got := money.Format(money.ToCents(c.Total())); got != "1935.97" {
		t.Fatalf("total: expected 1935.97, got %s", got)
	}

	// Cents persist the same rounded values.
	if got := money.ToCents(c.Tax()); got != 17600 {
		t.Fatalf("tax cents: expected 17600, got %d", got)
	}
	if got := money.ToCents(c.Total()); got != 193597 {
		t.Fatalf("total cents: expected 193597, got %d", got)
	}
}

func TestTotalsDoNotCompoundPerLineRounding(t *testing.T) {
	// Three lines whose per-line tax would each round up if taxed separately.
	c := New(taxRate(t, "0.07"))
	for i := 0; i < 3; i++ {
		c.AddItem(uuid.New(), "Sticker", 105)
	}

	// 3.15 * 0.07 = 0.2205 -> 0.22; per-line each 0.0735 -> 0.07*3 = 0.21.
	if got := money.ToCents(c.Tax()); got != 22 {
		t.Fatalf("expected tax computed on the exact subtotal, got %d cents", got)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	c := New(taxRate(t, "0.10"))
	c.AddItem(uuid.New(), "Desk", 45000)
	c.Clear()

	if !c.IsEmpty() {
		t.Fatalf("expected empty cart after Clear")
	}
	if !c.Subtotal().IsZero() {
		t.Fatalf("expected zero subtotal after Clear, got %s", c.Subtotal())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New(taxRate(t, "0.10"))
	productID := uuid.New()
	c.AddItem(productID, "Lamp", 1999)

	items := c.Items()
	items[0].Quantity = 99

	if got := c.Items()[0].Quantity; got != 1 {
		t.Fatalf("mutating the returned slice leaked into the cart: %d", got)
	}
}
