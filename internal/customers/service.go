package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/pkg/db"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
	"github.com/tillpoint/tillpoint-backend/pkg/validation"
)

// Service exposes customer record management.
type Service interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*CustomerDTO, error)
	UpdateCustomer(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*CustomerDTO, error)
	DeleteCustomer(ctx context.Context, customerID uuid.UUID) error
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	ListCustomers(ctx context.Context, spec listing.Spec) (*CustomerListResult, error)
}

// CustomerInput holds the submitted form fields.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address *string
}

const phoneMinDigits = 7

var customerRules = map[string][]validation.Rule{
	"name":  {validation.Required()},
	"email": {validation.Required(), validation.Email()},
	"phone": {validation.Required(), validation.Phone(phoneMinDigits)},
}

func (in CustomerInput) fields() map[string]string {
	return map[string]string{
		"name":  in.Name,
		"email": in.Email,
		"phone": in.Phone,
	}
}

// CustomerDTO represents the customer payload returned to clients.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerListResult is one page of customers plus entry counters.
type CustomerListResult struct {
	Customers    []CustomerDTO `json:"customers"`
	StartEntry   int           `json:"start_entry"`
	EndEntry     int           `json:"end_entry"`
	TotalEntries int           `json:"total_entries"`
}

func newCustomerDTO(customer *models.Customer) *CustomerDTO {
	if customer == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Address:   customer.Address,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

type service struct {
	store CustomerStore
}

// NewService constructs a customer service on the given store.
func NewService(store CustomerStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("customer store required")
	}
	return &service{store: store}, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CustomerInput) (*CustomerDTO, error) {
	if errs := validation.Validate(input.fields(), customerRules); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(errs)
	}

	customer := &models.Customer{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   strings.TrimSpace(input.Phone),
		Address: input.Address,
	}

	created, err := s.store.Insert(ctx, customer)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("email %s already exists", customer.Email))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	return newCustomerDTO(created), nil
}

func (s *service) UpdateCustomer(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*CustomerDTO, error) {
	if errs := validation.Validate(input.fields(), customerRules); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(errs)
	}

	customer := &models.Customer{
		ID:      customerID,
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   strings.TrimSpace(input.Phone),
		Address: input.Address,
	}

	updated, err := s.store.Update(ctx, customer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return newCustomerDTO(updated), nil
}

func (s *service) DeleteCustomer(ctx context.Context, customerID uuid.UUID) error {
	if err := s.store.Delete(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete customer")
	}
	return nil
}

func (s *service) GetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.store.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return newCustomerDTO(customer), nil
}

func (s *service) ListCustomers(ctx context.Context, spec listing.Spec) (*CustomerListResult, error) {
	customers, total, err := s.store.List(ctx, spec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}

	dtos := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, *newCustomerDTO(&customers[i]))
	}

	result := &CustomerListResult{Customers: dtos, TotalEntries: int(total)}
	result.StartEntry, result.EndEntry = listing.EntryRange(spec, len(dtos))
	return result, nil
}
