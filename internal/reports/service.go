package reports

import (
	"context"
	"fmt"

	"github.com/tillpoint/tillpoint-backend/internal/transactions"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

const defaultTopProducts = 5

// Service produces the summary views shown on the reporting screens.
type Service interface {
	FinancialSummary(ctx context.Context, dr *listing.DateRange) (*FinancialSummaryDTO, error)
	SalesSummary(ctx context.Context, dr *listing.DateRange) (*SalesSummaryDTO, error)
	StaffSummary(ctx context.Context, dr *listing.DateRange) (*StaffSummaryDTO, error)
}

// FinancialSummaryDTO breaks ledger activity into income, refunds, expenses,
// and the resulting net.
type FinancialSummaryDTO struct {
	SalesCents    int64  `json:"sales_cents"`
	Sales         string `json:"sales"`
	RefundsCents  int64  `json:"refunds_cents"`
	Refunds       string `json:"refunds"`
	ExpensesCents int64  `json:"expenses_cents"`
	Expenses      string `json:"expenses"`
	IncomeCents   int64  `json:"income_cents"`
	Income        string `json:"income"`
	NetCents      int64  `json:"net_cents"`
	Net           string `json:"net"`
}

// TopProductDTO is one row of the best-seller list.
type TopProductDTO struct {
	ProductName  string `json:"product_name"`
	QuantitySold int64  `json:"quantity_sold"`
	RevenueCents int64  `json:"revenue_cents"`
	Revenue      string `json:"revenue"`
}

// SalesSummaryDTO rolls up register activity for the period.
type SalesSummaryDTO struct {
	BillCount        int64           `json:"bill_count"`
	RevenueCents     int64           `json:"revenue_cents"`
	Revenue          string          `json:"revenue"`
	AverageBillCents int64           `json:"average_bill_cents"`
	AverageBill      string          `json:"average_bill"`
	TopProducts      []TopProductDTO `json:"top_products"`
}

// CashierSummaryDTO is one cashier's share of the period.
type CashierSummaryDTO struct {
	CashierName  string `json:"cashier_name"`
	BillCount    int64  `json:"bill_count"`
	RevenueCents int64  `json:"revenue_cents"`
	Revenue      string `json:"revenue"`
}

// StaffSummaryDTO groups the period's bills by cashier.
type StaffSummaryDTO struct {
	Cashiers []CashierSummaryDTO `json:"cashiers"`
}

type service struct {
	repo   *Repository
	ledger *transactions.Repository
}

// NewService builds the reporting service.
func NewService(repo *Repository, ledger *transactions.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reporting repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	return &service{repo: repo, ledger: ledger}, nil
}

// FinancialSummary reads the ledger. Income is sales less approved refunds;
// net subtracts expenses from income.
func (s *service) FinancialSummary(ctx context.Context, dr *listing.DateRange) (*FinancialSummaryDTO, error) {
	sums, err := s.ledger.SumByType(ctx, dr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum ledger")
	}

	sales := sums[enums.TransactionTypeSale.String()]
	refunds := sums[enums.TransactionTypeRefund.String()]
	expenses := sums[enums.TransactionTypeExpense.String()]
	income := sales - refunds
	net := income - expenses

	return &FinancialSummaryDTO{
		SalesCents:    sales,
		Sales:         money.Format(sales),
		RefundsCents:  refunds,
		Refunds:       money.Format(refunds),
		ExpensesCents: expenses,
		Expenses:      money.Format(expenses),
		IncomeCents:   income,
		Income:        money.Format(income),
		NetCents:      net,
		Net:           money.Format(net),
	}, nil
}

func (s *service) SalesSummary(ctx context.Context, dr *listing.DateRange) (*SalesSummaryDTO, error) {
	count, revenue, err := s.repo.BillTotals(ctx, dr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bill totals")
	}

	var average int64
	if count > 0 {
		average = revenue / count
	}

	top, err := s.repo.TopProducts(ctx, dr, defaultTopProducts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: top products")
	}

	products := make([]TopProductDTO, 0, len(top))
	for _, row := range top {
		products = append(products, TopProductDTO{
			ProductName:  row.ProductName,
			QuantitySold: row.QuantitySold,
			RevenueCents: row.RevenueCents,
			Revenue:      money.Format(row.RevenueCents),
		})
	}

	return &SalesSummaryDTO{
		BillCount:        count,
		RevenueCents:     revenue,
		Revenue:          money.Format(revenue),
		AverageBillCents: average,
		AverageBill:      money.Format(average),
		TopProducts:      products,
	}, nil
}

func (s *service) StaffSummary(ctx context.Context, dr *listing.DateRange) (*StaffSummaryDTO, error) {
	rows, err := s.repo.SalesByCashier(ctx, dr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sales by cashier")
	}

	cashiers := make([]CashierSummaryDTO, 0, len(rows))
	for _, row := range rows {
		cashiers = append(cashiers, CashierSummaryDTO{
			CashierName:  row.CashierName,
			BillCount:    row.BillCount,
			RevenueCents: row.RevenueCents,
			Revenue:      money.Format(row.RevenueCents),
		})
	}
	return &StaffSummaryDTO{Cashiers: cashiers}, nil
}
