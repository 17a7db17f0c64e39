package refunds

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// Repository persists refund requests.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a refund repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new refund request.
func (r *Repository) Create(ctx context.Context, refund *models.Refund) (*models.Refund, error) {
	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

// GetByID loads one refund.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&refund).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// Save writes back a modified refund.
func (r *Repository) Save(ctx context.Context, refund *models.Refund) (*models.Refund, error) {
	if err := r.db.WithContext(ctx).Save(refund).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

// SumApprovedByBill totals the approved refund amounts against one bill.
func (r *Repository) SumApprovedByBill(ctx context.Context, billID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("bill_id = ? AND status = ?", billID, "approved").
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

var refundSortColumns = map[string]string{
	"order_number": "order_number",
	"amount":       "amount_cents",
	"status":       "status",
	"created_at":   "created_at",
}

// List filters by status, searches order number and reason, and bounds the
// creation date.
func (r *Repository) List(ctx context.Context, spec listing.Spec) ([]models.Refund, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Refund{})

	if search := strings.TrimSpace(spec.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(order_number) LIKE ? OR LOWER(reason) LIKE ?", pattern, pattern)
	}
	if status, ok := spec.FieldFilters["status"]; ok && status != "" && status != listing.FilterAll {
		q = q.Where("status = ?", status)
	}
	if dr := spec.DateRange; dr != nil {
		if dr.Start != nil {
			q = q.Where("created_at >= ?", *dr.Start)
		}
		if dr.End != nil {
			q = q.Where("created_at <= ?", *dr.End)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := refundSortColumns[spec.SortField]
	if !ok {
		column = "created_at"
	}
	order := column
	if spec.SortDirection == listing.Descending {
		order += " DESC"
	}
	q = q.Order(order)

	if spec.PageSize != listing.PageSizeAll {
		q = q.Offset(spec.Page * spec.PageSize).Limit(spec.PageSize)
	}

	var rows []models.Refund
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
