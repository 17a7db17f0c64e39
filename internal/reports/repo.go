package reports

import (
	"context"

	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// Repository runs the aggregate queries behind the reporting endpoints.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reporting repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type billAggregate struct {
	Count      int64
	TotalCents int64
}

func applyBillRange(q *gorm.DB, dr *listing.DateRange) *gorm.DB {
	if dr == nil {
		return q
	}
	if dr.Start != nil {
		q = q.Where("created_at >= ?", *dr.Start)
	}
	if dr.End != nil {
		q = q.Where("created_at <= ?", *dr.End)
	}
	return q
}

// BillTotals returns the bill count and summed totals within the range.
func (r *Repository) BillTotals(ctx context.Context, dr *listing.DateRange) (int64, int64, error) {
	var agg billAggregate
	q := applyBillRange(r.db.WithContext(ctx).Model(&models.Bill{}), dr)
	err := q.Select("COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS total_cents").Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	return agg.Count, agg.TotalCents, nil
}

// ProductSales is the sold-quantity rollup for one product.
type ProductSales struct {
	ProductName  string
	QuantitySold int64
	RevenueCents int64
}

// TopProducts returns the best sellers by quantity within the range.
func (r *Repository) TopProducts(ctx context.Context, dr *listing.DateRange, limit int) ([]ProductSales, error) {
	q := r.db.WithContext(ctx).
		Model(&models.BillLineItem{}).
		Joins("JOIN bills ON bills.id = bill_line_items.bill_id")
	if dr != nil {
		if dr.Start != nil {
			q = q.Where("bills.created_at >= ?", *dr.Start)
		}
		if dr.End != nil {
			q = q.Where("bills.created_at <= ?", *dr.End)
		}
	}

	var rows []ProductSales
	err := q.Select("bill_line_items.product_name AS product_name, " +
		"SUM(bill_line_items.quantity) AS quantity_sold, " +
		"SUM(bill_line_items.line_total_cents) AS revenue_cents").
		Group("bill_line_items.product_name").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CashierSales is the per-cashier bill rollup.
type CashierSales struct {
	CashierName  string
	BillCount    int64
	RevenueCents int64
}

// SalesByCashier groups bills by the cashier who rang them up.
func (r *Repository) SalesByCashier(ctx context.Context, dr *listing.DateRange) ([]CashierSales, error) {
	q := applyBillRange(r.db.WithContext(ctx).Model(&models.Bill{}), dr)

	var rows []CashierSales
	err := q.Select("cashier_name, COUNT(*) AS bill_count, COALESCE(SUM(total_cents), 0) AS revenue_cents").
		Group("cashier_name").
		Order("revenue_cents DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
