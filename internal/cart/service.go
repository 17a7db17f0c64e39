package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillpoint/tillpoint-backend/internal/billing"
	"github.com/tillpoint/tillpoint-backend/internal/catalog"
	"github.com/tillpoint/tillpoint-backend/internal/transactions"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	WithTx(tx *gorm.DB) catalog.ProductStore
}

// Service turns a submitted cart into an immutable bill.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*billing.BillDTO, error)
}

// CheckoutInput is the register's submitted cart plus customer info.
type CheckoutInput struct {
	CustomerName  string
	CustomerPhone *string
	CashierName   string
	PaymentMethod enums.PaymentMethod
	Items         []CheckoutItem
}

// CheckoutItem names a product and how many units were rung up.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	products productLoader
	bills    *billing.Repository
	ledger   *transactions.Repository
	tx       txRunner
	sales    *metrics.SalesMetrics
	logg     *logger.Logger
	taxRate  decimal.Decimal
	now      func() time.Time
}

// NewService builds the checkout service. The tax rate comes from
// configuration and is parsed once here.
func NewService(products productLoader, bills *billing.Repository, ledger *transactions.Repository, tx txRunner, sales *metrics.SalesMetrics, logg *logger.Logger, cfg config.CheckoutConfig) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
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
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	taxRate, err := decimal.NewFromString(strings.TrimSpace(cfg.TaxRate))
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", cfg.TaxRate, err)
	}

	return &service{
		products: products,
		bills:    bills,
		ledger:   ledger,
		tx:       tx,
		sales:    sales,
		logg:     logg,
		taxRate:  taxRate,
		now:      time.Now,
	}, nil
}

// Checkout validates the submitted cart, accumulates it against current
// catalog prices, and persists the bill, its ledger row, and the stock
// decrement atomically. The cart is cleared only after the commit succeeds.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*billing.BillDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CashierName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier name is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	accumulated := New(s.taxRate)
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", item.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is inactive", product.SKU))
		}

		accumulated.AddItem(product.ID, product.Name, product.PriceCents)
		if item.Quantity > 1 {
			if err := accumulated.ChangeQuantity(product.ID, item.Quantity-1); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accumulate cart")
			}
		}
	}

	now := s.now().UTC()
	bill := s.snapshot(accumulated, input, now)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.bills.WithTx(tx).CreateBill(ctx, bill); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert bill")
		}

		ledgerRow := &models.FinancialTransaction{
			ID:          uuid.New(),
			Type:        enums.TransactionTypeSale,
			Category:    "sales",
			Description: fmt.Sprintf("sale %s", bill.OrderNumber),
			AmountCents: bill.TotalCents,
			ReferenceID: &bill.ID,
			OccurredAt:  now,
		}
		if _, err := s.ledger.WithTx(tx).Create(ctx, ledgerRow); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger row")
		}

		txProducts := s.products.WithTx(tx)
		for _, line := range bill.Lines {
			if err := txProducts.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust stock")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	accumulated.Clear()

	logCtx := s.logg.WithOrderNumber(ctx, bill.OrderNumber)
	logCtx = s.logg.WithCashier(logCtx, bill.CashierName)
	s.logg.Info(logCtx, fmt.Sprintf("checkout committed: %s", money.Format(bill.TotalCents)))

	s.sales.IncCheckout(input.PaymentMethod.String())
	s.sales.ObserveBillTotal(money.FromCents(bill.TotalCents).InexactFloat64())

	return billing.NewBillDTO(bill), nil
}

// snapshot freezes the accumulated cart into a bill. Totals are rounded to
// currency precision exactly once, here.
func (s *service) snapshot(c *Cart, input CheckoutInput, now time.Time) *models.Bill {
	billID := uuid.New()

	items := c.Items()
	lines := make([]models.BillLineItem, 0, len(items))
	for _, item := range items {
		lineTotal := money.FromCents(item.UnitPriceCents).Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, models.BillLineItem{
			ID:             uuid.New(),
			BillID:         billID,
			ProductID:      item.ProductID,
			ProductName:    item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: money.ToCents(lineTotal),
		})
	}

	return &models.Bill{
		ID:            billID,
		OrderNumber:   newOrderNumber(now),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: input.CustomerPhone,
		CashierName:   strings.TrimSpace(input.CashierName),
		PaymentMethod: input.PaymentMethod,
		TaxRate:       s.taxRate.String(),
		SubtotalCents: money.ToCents(c.Subtotal()),
		TaxCents:      money.ToCents(c.Tax()),
		TotalCents:    money.ToCents(c.Total()),
		Lines:         lines,
		CreatedAt:     now,
	}
}

// newOrderNumber builds the human-facing bill identifier. The uuid fragment
// keeps concurrent registers from colliding within a day.
func newOrderNumber(now time.Time) string {
	fragment := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), fragment)
}
