package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
	"github.com/tillpoint/tillpoint-backend/pkg/validation"
)

// Service exposes the financial ledger. Sale and refund rows are written by
// checkout and refund processing; only expenses are recorded directly.
type Service interface {
	RecordExpense(ctx context.Context, input ExpenseInput) (*TransactionDTO, error)
	ListTransactions(ctx context.Context, spec listing.Spec) (*TransactionListResult, error)
}

// ExpenseInput describes a manually recorded expense.
type ExpenseInput struct {
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	OccurredAt  string `json:"occurred_at,omitempty"`
}

// TransactionDTO is the API shape of one ledger row.
type TransactionDTO struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents"`
	Amount      string     `json:"amount"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// TransactionListResult is one page of ledger rows.
type TransactionListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	StartEntry   int              `json:"start_entry"`
	EndEntry     int              `json:"end_entry"`
	TotalEntries int              `json:"total_entries"`
}

// NewTransactionDTO maps a ledger model to its API shape.
func NewTransactionDTO(row *models.FinancialTransaction) *TransactionDTO {
	return &TransactionDTO{
		ID:          row.ID,
		Type:        row.Type.String(),
		Category:    row.Category,
		Description: row.Description,
		AmountCents: row.AmountCents,
		Amount:      money.Format(row.AmountCents),
		ReferenceID: row.ReferenceID,
		OccurredAt:  row.OccurredAt,
	}
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions: repository is nil")
	}
	if logg == nil {
		return nil, fmt.Errorf("transactions: logger is nil")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

var expenseRules = map[string][]validation.Rule{
	"category":    {validation.Required()},
	"description": {validation.Required()},
	"amount":      {validation.Required(), validation.NumericPositive()},
}

func (s *service) RecordExpense(ctx context.Context, input ExpenseInput) (*TransactionDTO, error) {
	fields := map[string]string{
		"category":    input.Category,
		"description": input.Description,
		"amount":      input.Amount,
	}
	if errs := validation.Validate(fields, expenseRules); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense").WithDetails(errs)
	}

	amount, err := money.ParseAmount(input.Amount)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense amount")
	}

	occurredAt := s.now()
	if input.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.OccurredAt)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "occurred_at must be RFC 3339")
		}
		occurredAt = parsed
	}

	row := &models.FinancialTransaction{
		ID:          uuid.New(),
		Type:        enums.TransactionTypeExpense,
		Category:    input.Category,
		Description: input.Description,
		AmountCents: money.ToCents(amount),
		OccurredAt:  occurredAt,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record expense")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_id": created.ID.String(),
		"category":       created.Category,
		"amount_cents":   created.AmountCents,
	})
	s.logg.Info(logCtx, "expense recorded")
	return NewTransactionDTO(created), nil
}

func (s *service) ListTransactions(ctx context.Context, spec listing.Spec) (*TransactionListResult, error) {
	rows, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list transactions")
	}

	out := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewTransactionDTO(&rows[i]))
	}

	start, end := listing.EntryRange(spec, len(out))
	return &TransactionListResult{
		Transactions: out,
		StartEntry:   start,
		EndEntry:     end,
		TotalEntries: int(total),
	}, nil
}
