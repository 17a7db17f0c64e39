package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// CustomerStore is the persistence capability for customer records.
type CustomerStore interface {
	List(ctx context.Context, spec listing.Spec) ([]models.Customer, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Insert(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository encapsulates customer persistence on gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customer repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var customerSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

// List searches over name, email, and phone.
func (r *Repository) List(ctx context.Context, spec listing.Spec) ([]models.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})

	if search := strings.TrimSpace(spec.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := customerSortColumns[spec.SortField]
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

	var customers []models.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// GetByID loads one customer.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Insert creates the customer row.
func (r *Repository) Insert(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Update replaces the full customer row by identifier.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(customer)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, customer.ID)
}

// Delete removes the customer row by identifier.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
