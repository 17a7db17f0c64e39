package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Brand       *string   `json:"brand,omitempty"`
	Description *string   `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	Tags        []string  `json:"tags,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductDTO maps the persisted product into its response shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Category:    product.Category,
		Brand:       product.Brand,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Price:       money.Format(product.PriceCents),
		Stock:       product.Stock,
		Tags:        product.Tags,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// ProductListResult is one page of products plus entry counters.
type ProductListResult struct {
	Products     []ProductDTO `json:"products"`
	StartEntry   int          `json:"start_entry"`
	EndEntry     int          `json:"end_entry"`
	TotalEntries int          `json:"total_entries"`
}
