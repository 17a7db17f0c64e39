package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/internal/billing"
	"github.com/tillpoint/tillpoint-backend/internal/catalog"
	"github.com/tillpoint/tillpoint-backend/internal/transactions"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
)

type checkoutFixture struct {
	svc      Service
	client   *db.Client
	products *catalog.MemoryStore
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	client, err := db.NewSQLiteMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	conn := client.DB()
	if err := conn.AutoMigrate(&models.Bill{}, &models.BillLineItem{}, &models.FinancialTransaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"financial_transactions", "bill_line_items", "bills"} {
		if err := conn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}

	products := catalog.NewMemoryStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(products, billing.NewRepository(conn), transactions.NewRepository(conn), client, metrics.NewSalesMetrics(), logg, config.CheckoutConfig{TaxRate: "0.10"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &checkoutFixture{svc: svc, client: client, products: products}
}

func (f *checkoutFixture) seedProduct(t *testing.T, sku, name string, priceCents int64, stock int, active bool) uuid.UUID {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		SKU:        sku,
		Name:       name,
		Category:   "laptops",
		PriceCents: priceCents,
		Stock:      stock,
		IsActive:   active,
	}
	if _, err := f.products.Insert(context.Background(), product); err != nil {
		t.Fatalf("seed product %s: %v", sku, err)
	}
	return product.ID
}

func TestCheckoutWritesBillLedgerAndStock(t *testing.T) {
	f := newCheckoutFixture(t)
	laptopID := f.seedProduct(t, "LP-001", "ThinkPad", 99999, 10, true)
	mouseID := f.seedProduct(t, "MS-001", "MX Master", 37999, 4, true)

	dto, err := f.svc.Checkout(context.Background(), CheckoutInput{
		CustomerName:  "Walk-in",
		CashierName:   "Asha",
		PaymentMethod: enums.PaymentMethodCash,
		Items: []CheckoutItem{
			{ProductID: laptopID, Quantity: 1},
			{ProductID: mouseID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if dto.Subtotal != "1759.97" || dto.Tax != "176.00" || dto.Total != "1935.97" {
		t.Fatalf("totals = %s / %s / %s", dto.Subtotal, dto.Tax, dto.Total)
	}
	if len(dto.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(dto.Lines))
	}
	if dto.OrderNumber == "" {
		t.Fatal("order number is empty")
	}

	var bill models.Bill
	if err := f.client.DB().Preload("Lines").First(&bill, "id = ?", dto.ID).Error; err != nil {
		t.Fatalf("load bill: %v", err)
	}
	if bill.TotalCents != 193597 || len(bill.Lines) != 2 {
		t.Fatalf("bill = %+v", bill)
	}

	var ledger []models.FinancialTransaction
	if err := f.client.DB().Find(&ledger).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(ledger))
	}
	if ledger[0].Type != enums.TransactionTypeSale || ledger[0].AmountCents != 193597 {
		t.Fatalf("ledger row = %+v", ledger[0])
	}
	if ledger[0].ReferenceID == nil || *ledger[0].ReferenceID != bill.ID {
		t.Fatalf("reference = %v, want %s", ledger[0].ReferenceID, bill.ID)
	}

	mouse, err := f.products.GetByID(context.Background(), mouseID)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if mouse.Stock != 2 {
		t.Fatalf("stock = %d, want 2", mouse.Stock)
	}
}

func TestCheckoutMergesRepeatedItems(t *testing.T) {
	f := newCheckoutFixture(t)
	laptopID := f.seedProduct(t, "LP-001", "ThinkPad", 99999, 10, true)

	dto, err := f.svc.Checkout(context.Background(), CheckoutInput{
		CustomerName:  "Walk-in",
		CashierName:   "Asha",
		PaymentMethod: enums.PaymentMethodCard,
		Items: []CheckoutItem{
			{ProductID: laptopID, Quantity: 1},
			{ProductID: laptopID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(dto.Lines) != 1 {
		t.Fatalf("lines = %d, want merged single line", len(dto.Lines))
	}
	if dto.Lines[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", dto.Lines[0].Quantity)
	}
}

func TestCheckoutValidation(t *testing.T) {
	f := newCheckoutFixture(t)
	activeID := f.seedProduct(t, "LP-001", "ThinkPad", 99999, 10, true)
	inactiveID := f.seedProduct(t, "LP-002", "Retired", 49999, 10, false)

	base := CheckoutInput{
		CustomerName:  "Walk-in",
		CashierName:   "Asha",
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []CheckoutItem{{ProductID: activeID, Quantity: 1}},
	}

	cases := []struct {
		name   string
		mutate func(in CheckoutInput) CheckoutInput
		code   pkgerrors.Code
	}{
		{"empty cart", func(in CheckoutInput) CheckoutInput { in.Items = nil; return in }, pkgerrors.CodeValidation},
		{"missing customer", func(in CheckoutInput) CheckoutInput { in.CustomerName = "  "; return in }, pkgerrors.CodeValidation},
		{"missing cashier", func(in CheckoutInput) CheckoutInput { in.CashierName = ""; return in }, pkgerrors.CodeValidation},
		{"bad payment method", func(in CheckoutInput) CheckoutInput { in.PaymentMethod = "cheque"; return in }, pkgerrors.CodeValidation},
		{"zero quantity", func(in CheckoutInput) CheckoutInput {
			in.Items = []CheckoutItem{{ProductID: activeID, Quantity: 0}}
			return in
		}, pkgerrors.CodeValidation},
		{"unknown product", func(in CheckoutInput) CheckoutInput {
			in.Items = []CheckoutItem{{ProductID: uuid.New(), Quantity: 1}}
			return in
		}, pkgerrors.CodeNotFound},
		{"inactive product", func(in CheckoutInput) CheckoutInput {
			in.Items = []CheckoutItem{{ProductID: inactiveID, Quantity: 1}}
			return in
		}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Checkout(context.Background(), tc.mutate(base))
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != tc.code {
				t.Fatalf("error = %v, want code %s", err, tc.code)
			}
		})
	}

	var count int64
	if err := f.client.DB().Model(&models.Bill{}).Count(&count).Error; err != nil {
		t.Fatalf("count bills: %v", err)
	}
	if count != 0 {
		t.Fatalf("bills = %d, want 0 after rejected checkouts", count)
	}
}
