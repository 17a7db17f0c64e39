package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// Repository encapsulates bill persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a bill repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateBill inserts the bill snapshot with its line items.
func (r *Repository) CreateBill(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	if err := r.db.WithContext(ctx).Create(bill).Error; err != nil {
		return nil, err
	}
	return bill, nil
}

// GetByID loads a bill and its lines.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).Preload("Lines").First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// GetByOrderNumber loads a bill by its human-facing identifier.
func (r *Repository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).Preload("Lines").First(&bill, "order_number = ?", orderNumber).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// sortColumns whitelists the fields the list endpoint may order by.
var sortColumns = map[string]string{
	"order_number":  "order_number",
	"customer_name": "customer_name",
	"cashier_name":  "cashier_name",
	"total":         "total_cents",
	"created_at":    "created_at",
}

// List translates the listing spec into SQL: search over order number and
// customer name, payment method filter, inclusive date range, whitelisted
// sort, offset pagination. The pure pipeline in pkg/listing defines the
// reference semantics this must match.
func (r *Repository) List(ctx context.Context, spec listing.Spec) ([]models.Bill, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Bill{})

	if search := strings.TrimSpace(spec.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if method, ok := spec.FieldFilters["payment_method"]; ok && method != "" && method != listing.FilterAll {
		q = q.Where("payment_method = ?", method)
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

	column, ok := sortColumns[spec.SortField]
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

	var bills []models.Bill
	if err := q.Preload("Lines").Find(&bills).Error; err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}
