package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// ProductStore is the persistence capability the catalog runs on. The gorm
// repository is the production implementation; MemoryStore backs tests and
// mirrors the in-memory arrays the legacy screens held.
type ProductStore interface {
	List(ctx context.Context, spec listing.Spec) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// Repository encapsulates product persistence on gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a store bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) ProductStore {
	return &Repository{db: tx}
}

var productSortColumns = map[string]string{
	"name":       "name",
	"sku":        "sku",
	"category":   "category",
	"price":      "price_cents",
	"stock":      "stock",
	"created_at": "created_at",
}

// List translates the listing spec into SQL. Search covers name and SKU;
// the category and brand filters are exact unless "all".
func (r *Repository) List(ctx context.Context, spec listing.Spec) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if search := strings.TrimSpace(spec.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if category, ok := spec.FieldFilters["category"]; ok && category != "" && category != listing.FilterAll {
		q = q.Where("category = ?", category)
	}
	if brand, ok := spec.FieldFilters["brand"]; ok && brand != "" && brand != listing.FilterAll {
		q = q.Where("brand = ?", brand)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := productSortColumns[spec.SortField]
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

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID loads one product.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySKU loads one product by its stock keeping unit.
func (r *Repository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Insert creates the product row.
func (r *Repository) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update replaces the full product row by identifier.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(product)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, product.ID)
}

// Delete removes the product row by identifier.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustStock shifts the stock counter by delta, clamping at zero.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return err
	}
	next := product.Stock + delta
	if next < 0 {
		next = 0
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", next).Error
}
