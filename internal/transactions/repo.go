package transactions

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// Repository encapsulates the financial ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a ledger repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create appends one ledger row.
func (r *Repository) Create(ctx context.Context, row *models.FinancialTransaction) (*models.FinancialTransaction, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

var ledgerSortColumns = map[string]string{
	"type":        "type",
	"category":    "category",
	"amount":      "amount_cents",
	"occurred_at": "occurred_at",
}

// List filters by type, searches description and category, and bounds the
// occurrence date.
func (r *Repository) List(ctx context.Context, spec listing.Spec) ([]models.FinancialTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.FinancialTransaction{})

	if search := strings.TrimSpace(spec.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(description) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}
	if typ, ok := spec.FieldFilters["type"]; ok && typ != "" && typ != listing.FilterAll {
		q = q.Where("type = ?", typ)
	}
	if dr := spec.DateRange; dr != nil {
		if dr.Start != nil {
			q = q.Where("occurred_at >= ?", *dr.Start)
		}
		if dr.End != nil {
			q = q.Where("occurred_at <= ?", *dr.End)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := ledgerSortColumns[spec.SortField]
	if !ok {
		column = "occurred_at"
	}
	order := column
	if spec.SortDirection == listing.Descending {
		order += " DESC"
	}
	q = q.Order(order)

	if spec.PageSize != listing.PageSizeAll {
		q = q.Offset(spec.Page * spec.PageSize).Limit(spec.PageSize)
	}

	var rows []models.FinancialTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumByType totals amounts per transaction type within the optional range.
func (r *Repository) SumByType(ctx context.Context, dr *listing.DateRange) (map[string]int64, error) {
	q := r.db.WithContext(ctx).Model(&models.FinancialTransaction{})
	if dr != nil {
		if dr.Start != nil {
			q = q.Where("occurred_at >= ?", *dr.Start)
		}
		if dr.End != nil {
			q = q.Where("occurred_at <= ?", *dr.End)
		}
	}

	var rows []struct {
		Type  string
		Total int64
	}
	err := q.Select("type, SUM(amount_cents) AS total").Group("type").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int64, len(rows))
	for _, row := range rows {
		sums[row.Type] = row.Total
	}
	return sums, nil
}
