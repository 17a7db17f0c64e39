package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

// Service exposes read access to completed bills. Bills are created only by
// the checkout flow in internal/cart.
type Service interface {
	GetBill(ctx context.Context, id uuid.UUID) (*BillDTO, error)
	GetBillByOrderNumber(ctx context.Context, orderNumber string) (*BillDTO, error)
	ListBills(ctx context.Context, spec listing.Spec) (*BillListResult, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a billing read service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bill repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetBill(ctx context.Context, id uuid.UUID) (*BillDTO, error) {
	bill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bill")
	}
	return NewBillDTO(bill), nil
}

func (s *service) GetBillByOrderNumber(ctx context.Context, orderNumber string) (*BillDTO, error) {
	trimmed := strings.TrimSpace(orderNumber)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	bill, err := s.repo.GetByOrderNumber(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bill")
	}
	return NewBillDTO(bill), nil
}

func (s *service) ListBills(ctx context.Context, spec listing.Spec) (*BillListResult, error) {
	bills, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bills")
	}

	dtos := make([]BillDTO, 0, len(bills))
	for i := range bills {
		dtos = append(dtos, *NewBillDTO(&bills[i]))
	}

	result := &BillListResult{Bills: dtos, TotalEntries: int(total)}
	result.StartEntry, result.EndEntry = listing.EntryRange(spec, len(dtos))
	return result, nil
}
