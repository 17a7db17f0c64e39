package customers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// MemoryStore keeps customers in an insertion-ordered slice and lists them
// through the pure pipeline.
type MemoryStore struct {
	mu        sync.RWMutex
	customers []models.Customer
}

// NewMemoryStore returns an empty in-memory customer store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// CustomerSchema adapts customers to the listing pipeline.
var CustomerSchema = listing.Schema[models.Customer]{
	Searchable: []string{"name", "email", "phone"},
	DateField:  "created_at",
	Field: func(rec models.Customer, name string) (listing.Value, bool) {
		switch name {
		case "name":
			return listing.String(rec.Name), true
		case "email":
			return listing.String(rec.Email), true
		case "phone":
			return listing.String(rec.Phone), true
		case "created_at":
			return listing.Time(rec.CreatedAt), true
		default:
			return listing.Value{}, false
		}
	},
}

// List applies the filter-sort-paginate pipeline over the slice.
func (m *MemoryStore) List(_ context.Context, spec listing.Spec) ([]models.Customer, int64, error) {
	m.mu.RLock()
	snapshot := make([]models.Customer, len(m.customers))
	copy(snapshot, m.customers)
	m.mu.RUnlock()

	filtered := listing.Filter(snapshot, spec, CustomerSchema)
	listing.Sort(filtered, spec.SortField, spec.SortDirection, CustomerSchema)
	page := listing.Paginate(filtered, spec.Page, spec.PageSize)
	return page.Records, int64(page.TotalEntries), nil
}

// GetByID finds a customer by identifier.
func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.customers {
		if m.customers[i].ID == id {
			found := m.customers[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Insert appends the customer, rejecting duplicate emails.
func (m *MemoryStore) Insert(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].Email == customer.Email {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	m.customers = append(m.customers, *customer)
	return customer, nil
}

// Update replaces the stored record by identifier.
func (m *MemoryStore) Update(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == customer.ID {
			customer.CreatedAt = m.customers[i].CreatedAt
			m.customers[i] = *customer
			updated := m.customers[i]
			return &updated, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Delete removes the record by identifier.
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
