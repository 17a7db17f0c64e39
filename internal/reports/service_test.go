package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/internal/transactions"
	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

func rangeOf(start, end time.Time) *listing.DateRange {
	return &listing.DateRange{Start: &start, End: &end}
}

type reportFixture struct {
	svc    Service
	client *db.Client
}

func newReportFixture(t *testing.T) *reportFixture {
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

	svc, err := NewService(NewRepository(conn), transactions.NewRepository(conn))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &reportFixture{svc: svc, client: client}
}

func (f *reportFixture) seedBill(t *testing.T, cashier string, totalCents int64, createdAt time.Time, lines ...models.BillLineItem) {
	t.Helper()
	bill := &models.Bill{
		ID:            uuid.New(),
		OrderNumber:   "ORD-" + uuid.NewString()[:8],
		CustomerName:  "Walk-in",
		CashierName:   cashier,
		PaymentMethod: enums.PaymentMethodCash,
		TaxRate:       "0.10",
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
		CreatedAt:     createdAt,
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].BillID = bill.ID
		if lines[i].ProductID == uuid.Nil {
			lines[i].ProductID = uuid.New()
		}
	}
	bill.Lines = lines
	if err := f.client.DB().Create(bill).Error; err != nil {
		t.Fatalf("seed bill: %v", err)
	}
}

func (f *reportFixture) seedLedger(t *testing.T, txType enums.TransactionType, cents int64, occurredAt time.Time) {
	t.Helper()
	row := &models.FinancialTransaction{
		ID:          uuid.New(),
		Type:        txType,
		Category:    txType.String() + "s",
		Description: "seed",
		AmountCents: cents,
		OccurredAt:  occurredAt,
	}
	if err := f.client.DB().Create(row).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
}

func TestFinancialSummaryNetsLedger(t *testing.T) {
	f := newReportFixture(t)
	day := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	f.seedLedger(t, enums.TransactionTypeSale, 193597, day)
	f.seedLedger(t, enums.TransactionTypeSale, 99999, day.Add(2*time.Hour))
	f.seedLedger(t, enums.TransactionTypeRefund, 37999, day.Add(3*time.Hour))
	f.seedLedger(t, enums.TransactionTypeExpense, 12550, day.Add(4*time.Hour))

	summary, err := f.svc.FinancialSummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("FinancialSummary: %v", err)
	}

	if summary.SalesCents != 293596 {
		t.Fatalf("sales = %d", summary.SalesCents)
	}
	if summary.IncomeCents != 255597 {
		t.Fatalf("income = %d", summary.IncomeCents)
	}
	if summary.NetCents != 243047 || summary.Net != "2430.47" {
		t.Fatalf("net = %d %q", summary.NetCents, summary.Net)
	}
}

func TestFinancialSummaryEmptyLedger(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.svc.FinancialSummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("FinancialSummary: %v", err)
	}
	if summary.NetCents != 0 || summary.Net != "0.00" {
		t.Fatalf("net = %d %q", summary.NetCents, summary.Net)
	}
}

func TestSalesSummaryAveragesAndTopProducts(t *testing.T) {
	f := newReportFixture(t)
	day := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	f.seedBill(t, "Asha", 100000, day,
		models.BillLineItem{ProductName: "ThinkPad", UnitPriceCents: 50000, Quantity: 2, LineTotalCents: 100000},
	)
	f.seedBill(t, "Nuwan", 50000, day.Add(time.Hour),
		models.BillLineItem{ProductName: "MX Master", UnitPriceCents: 10000, Quantity: 4, LineTotalCents: 40000},
		models.BillLineItem{ProductName: "USB Hub", UnitPriceCents: 10000, Quantity: 1, LineTotalCents: 10000},
	)

	summary, err := f.svc.SalesSummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("SalesSummary: %v", err)
	}

	if summary.BillCount != 2 || summary.RevenueCents != 150000 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.AverageBillCents != 75000 || summary.AverageBill != "750.00" {
		t.Fatalf("average = %d %q", summary.AverageBillCents, summary.AverageBill)
	}
	if len(summary.TopProducts) != 3 {
		t.Fatalf("top products = %d", len(summary.TopProducts))
	}
	best := summary.TopProducts[0]
	if best.ProductName != "MX Master" || best.QuantitySold != 4 || best.Revenue != "400.00" {
		t.Fatalf("best seller = %+v", best)
	}
	if summary.TopProducts[1].ProductName != "ThinkPad" || summary.TopProducts[1].QuantitySold != 2 {
		t.Fatalf("second = %+v", summary.TopProducts[1])
	}
}

func TestStaffSummaryGroupsByCashier(t *testing.T) {
	f := newReportFixture(t)
	day := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	f.seedBill(t, "Asha", 100000, day)
	f.seedBill(t, "Asha", 20000, day.Add(time.Hour))
	f.seedBill(t, "Nuwan", 50000, day.Add(2*time.Hour))

	summary, err := f.svc.StaffSummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("StaffSummary: %v", err)
	}
	if len(summary.Cashiers) != 2 {
		t.Fatalf("cashiers = %d", len(summary.Cashiers))
	}
	top := summary.Cashiers[0]
	if top.CashierName != "Asha" || top.BillCount != 2 || top.RevenueCents != 120000 {
		t.Fatalf("top cashier = %+v", top)
	}
}

func TestSalesSummaryRespectsDateRange(t *testing.T) {
	f := newReportFixture(t)
	aug := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	jul := time.Date(2026, 7, 5, 9, 0, 0, 0, time.UTC)

	f.seedBill(t, "Asha", 100000, aug)
	f.seedBill(t, "Asha", 40000, jul)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)
	summary, err := f.svc.SalesSummary(context.Background(), rangeOf(start, end))
	if err != nil {
		t.Fatalf("SalesSummary: %v", err)
	}
	if summary.BillCount != 1 || summary.RevenueCents != 100000 {
		t.Fatalf("summary = %+v", summary)
	}
}
