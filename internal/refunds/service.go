package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/billing"
	"github.com/tillpoint/tillpoint-backend/internal/transactions"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
	"github.com/tillpoint/tillpoint-backend/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages refund requests against completed bills.
type Service interface {
	RequestRefund(ctx context.Context, input RequestInput) (*RefundDTO, error)
	GetRefund(ctx context.Context, id uuid.UUID) (*RefundDTO, error)
	ListRefunds(ctx context.Context, spec listing.Spec) (*RefundListResult, error)
	DecideRefund(ctx context.Context, id uuid.UUID, input DecisionInput) (*RefundDTO, error)
}

// RequestInput opens a refund request against a bill.
type RequestInput struct {
	OrderNumber string  `json:"order_number" validate:"required"`
	Amount      string  `json:"amount" validate:"required"`
	Reason      string  `json:"reason" validate:"required"`
	Notes       *string `json:"notes,omitempty"`
	ProcessedBy string  `json:"processed_by" validate:"required"`
}

// DecisionInput resolves a pending refund.
type DecisionInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// RefundDTO is the API shape of a refund request.
type RefundDTO struct {
	ID          uuid.UUID `json:"id"`
	BillID      uuid.UUID `json:"bill_id"`
	OrderNumber string    `json:"order_number"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Reason      string    `json:"reason"`
	Notes       *string   `json:"notes,omitempty"`
	ProcessedBy string    `json:"processed_by"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RefundListResult is one page of refund requests.
type RefundListResult struct {
	Refunds      []RefundDTO `json:"refunds"`
	StartEntry   int         `json:"start_entry"`
	EndEntry     int         `json:"end_entry"`
	TotalEntries int         `json:"total_entries"`
}

// NewRefundDTO maps a refund model to its API shape.
func NewRefundDTO(refund *models.Refund) *RefundDTO {
	return &RefundDTO{
		ID:          refund.ID,
		BillID:      refund.BillID,
		OrderNumber: refund.OrderNumber,
		AmountCents: refund.AmountCents,
		Amount:      money.Format(refund.AmountCents),
		Reason:      refund.Reason,
		Notes:       refund.Notes,
		ProcessedBy: refund.ProcessedBy,
		Status:      refund.Status.String(),
		CreatedAt:   refund.CreatedAt,
		UpdatedAt:   refund.UpdatedAt,
	}
}

type service struct {
	repo   *Repository
	bills  *billing.Repository
	ledger *transactions.Repository
	tx     txRunner
	sales  *metrics.SalesMetrics
}

// NewService builds the refund service.
func NewService(repo *Repository, bills *billing.Repository, ledger *transactions.Repository, tx txRunner, sales *metrics.SalesMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refund repository required")
	}
	if bills == nil {
		return nil, fmt.Errorf("bill repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, bills: bills, ledger: ledger, tx: tx, sales: sales}, nil
}

var requestRules = map[string][]validation.Rule{
	"order_number": {validation.Required()},
	"amount":       {validation.Required(), validation.NumericPositive()},
	"reason":       {validation.Required()},
	"processed_by": {validation.Required()},
}

// RequestRefund validates the request against the referenced bill and opens
// it in pending status. The amount, together with refunds already approved
// against the bill, may not exceed the bill total.
func (s *service) RequestRefund(ctx context.Context, input RequestInput) (*RefundDTO, error) {
	fields := map[string]string{
		"order_number": input.OrderNumber,
		"amount":       input.Amount,
		"reason":       input.Reason,
		"processed_by": input.ProcessedBy,
	}
	if errs := validation.Validate(fields, requestRules); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid refund request").WithDetails(errs)
	}

	bill, err := s.bills.GetByOrderNumber(ctx, input.OrderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("bill %s not found", input.OrderNumber))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load bill")
	}

	amount, err := money.ParseAmount(input.Amount)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid refund amount")
	}
	amountCents := money.ToCents(amount)

	approved, err := s.repo.SumApprovedByBill(ctx, bill.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum refunds")
	}
	if amountCents+approved > bill.TotalCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds refundable balance").
			WithDetails(map[string]string{
				"refundable": money.Format(bill.TotalCents - approved),
			})
	}

	refund := &models.Refund{
		ID:          uuid.New(),
		BillID:      bill.ID,
		OrderNumber: bill.OrderNumber,
		AmountCents: amountCents,
		Reason:      input.Reason,
		Notes:       input.Notes,
		ProcessedBy: input.ProcessedBy,
		Status:      enums.RefundStatusPending,
	}
	created, err := s.repo.Create(ctx, refund)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert refund")
	}
	return NewRefundDTO(created), nil
}

func (s *service) GetRefund(ctx context.Context, id uuid.UUID) (*RefundDTO, error) {
	refund, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load refund")
	}
	return NewRefundDTO(refund), nil
}

func (s *service) ListRefunds(ctx context.Context, spec listing.Spec) (*RefundListResult, error) {
	rows, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list refunds")
	}

	out := make([]RefundDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewRefundDTO(&rows[i]))
	}

	start, end := listing.EntryRange(spec, len(out))
	return &RefundListResult{
		Refunds:      out,
		StartEntry:   start,
		EndEntry:     end,
		TotalEntries: int(total),
	}, nil
}

// DecideRefund moves a pending refund to approved or rejected. Approval
// writes the compensating ledger row in the same transaction as the status
// change; a decided refund cannot be reopened.
func (s *service) DecideRefund(ctx context.Context, id uuid.UUID, input DecisionInput) (*RefundDTO, error) {
	next, err := enums.ParseRefundStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if next == enums.RefundStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}

	refund, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load refund")
	}

	if !refund.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("refund is %s and cannot move to %s", refund.Status, next))
	}

	refund.Status = next
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Save(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update refund")
		}
		if next != enums.RefundStatusApproved {
			return nil
		}

		ledgerRow := &models.FinancialTransaction{
			ID:          uuid.New(),
			Type:        enums.TransactionTypeRefund,
			Category:    "refunds",
			Description: fmt.Sprintf("refund %s", refund.OrderNumber),
			AmountCents: refund.AmountCents,
			ReferenceID: &refund.ID,
			OccurredAt:  time.Now().UTC(),
		}
		if _, err := s.ledger.WithTx(tx).Create(ctx, ledgerRow); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger row")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide refund")
	}

	s.sales.IncRefund(next.String())
	return NewRefundDTO(refund), nil
}
