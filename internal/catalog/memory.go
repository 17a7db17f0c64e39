package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// MemoryStore keeps products in an insertion-ordered slice, the way the
// legacy screens held their data. List runs the pure pipeline, which makes
// this store the executable reference for the SQL translation in Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.Product
}

// NewMemoryStore returns an empty in-memory product store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ProductSchema adapts products to the listing pipeline.
var ProductSchema = listing.Schema[models.Product]{
	Searchable: []string{"name", "sku"},
	DateField:  "created_at",
	Field: func(rec models.Product, name string) (listing.Value, bool) {
		switch name {
		case "name":
			return listing.String(rec.Name), true
		case "sku":
			return listing.String(rec.SKU), true
		case "category":
			return listing.String(rec.Category), true
		case "brand":
			if rec.Brand == nil {
				return listing.String(""), true
			}
			return listing.String(*rec.Brand), true
		case "price":
			return listing.Cents(rec.PriceCents), true
		case "stock":
			return listing.Number(decimal.NewFromInt(int64(rec.Stock))), true
		case "created_at":
			return listing.Time(rec.CreatedAt), true
		default:
			return listing.Value{}, false
		}
	},
}

// WithTx satisfies the store surface; the memory store has no transactions.
func (m *MemoryStore) WithTx(*gorm.DB) ProductStore {
	return m
}

// List applies the filter-sort-paginate pipeline over the slice.
func (m *MemoryStore) List(_ context.Context, spec listing.Spec) ([]models.Product, int64, error) {
	m.mu.RLock()
	snapshot := make([]models.Product, len(m.products))
	copy(snapshot, m.products)
	m.mu.RUnlock()

	filtered := listing.Filter(snapshot, spec, ProductSchema)
	listing.Sort(filtered, spec.SortField, spec.SortDirection, ProductSchema)
	page := listing.Paginate(filtered, spec.Page, spec.PageSize)
	return page.Records, int64(page.TotalEntries), nil
}

// GetByID finds a product by identifier.
func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.products {
		if m.products[i].ID == id {
			found := m.products[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// GetBySKU finds a product by its stock keeping unit.
func (m *MemoryStore) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.products {
		if m.products[i].SKU == sku {
			found := m.products[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Insert appends the product, preserving insertion order.
func (m *MemoryStore) Insert(_ context.Context, product *models.Product) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].SKU == product.SKU {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	m.products = append(m.products, *product)
	return product, nil
}

// Update replaces the stored record by identifier.
func (m *MemoryStore) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == product.ID {
			product.CreatedAt = m.products[i].CreatedAt
			m.products[i] = *product
			updated := m.products[i]
			return &updated, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Delete removes the record by identifier.
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// AdjustStock shifts the stock counter by delta, clamping at zero.
func (m *MemoryStore) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			next := m.products[i].Stock + delta
			if next < 0 {
				next = 0
			}
			m.products[i].Stock = next
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
