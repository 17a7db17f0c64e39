package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
	"github.com/tillpoint/tillpoint-backend/pkg/validation"
)

// Service exposes product management operations.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	GetProductBySKU(ctx context.Context, sku string) (*ProductDTO, error)
	ListProducts(ctx context.Context, spec listing.Spec) (*ProductListResult, error)
}

// ProductInput holds the submitted form fields for create and for
// full-record replace on update. Price arrives as decimal text the way the
// form captures it.
type ProductInput struct {
	SKU         string
	Name        string
	Category    string
	Brand       *string
	Description *string
	Price       string
	Stock       int
	Tags        []string
	IsActive    bool
}

var productRules = map[string][]validation.Rule{
	"sku":      {validation.Required()},
	"name":     {validation.Required()},
	"category": {validation.Required()},
	"price":    {validation.Required(), validation.NumericPositive()},
}

func (in ProductInput) fields() map[string]string {
	return map[string]string{
		"sku":      in.SKU,
		"name":     in.Name,
		"category": in.Category,
		"price":    in.Price,
	}
}

type service struct {
	store ProductStore
}

// NewService constructs a catalog service on the given store.
func NewService(store ProductStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("product store required")
	}
	return &service{store: store}, nil
}

// CreateProduct gates the submitted fields, then inserts the record.
func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	cents, err := gateProduct(input)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Brand:       input.Brand,
		Description: input.Description,
		PriceCents:  cents,
		Stock:       input.Stock,
		Tags:        input.Tags,
		IsActive:    input.IsActive,
	}

	created, err := s.store.Insert(ctx, product)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %s already exists", product.SKU))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct replaces the full record by identifier. There is no partial
// patch; the form always submits every field.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	cents, err := gateProduct(input)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          productID,
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Brand:       input.Brand,
		Description: input.Description,
		PriceCents:  cents,
		Stock:       input.Stock,
		Tags:        input.Tags,
		IsActive:    input.IsActive,
	}

	updated, err := s.store.Update(ctx, product)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the record by identifier.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.store.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// GetProduct loads one product.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.store.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// GetProductBySKU loads one product by its barcode-scanned SKU.
func (s *service) GetProductBySKU(ctx context.Context, sku string) (*ProductDTO, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	product, err := s.store.GetBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns the visible page for the given spec.
func (s *service) ListProducts(ctx context.Context, spec listing.Spec) (*ProductListResult, error) {
	products, total, err := s.store.List(ctx, spec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}

	result := &ProductListResult{Products: dtos, TotalEntries: int(total)}
	result.StartEntry, result.EndEntry = listing.EntryRange(spec, len(dtos))
	return result, nil
}

// gateProduct runs the validation gate and parses the price once it passes.
func gateProduct(input ProductInput) (int64, error) {
	if errs := validation.Validate(input.fields(), productRules); len(errs) > 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(errs)
	}
	parsed, err := money.ParseAmount(input.Price)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return money.ToCents(parsed), nil
}
