package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

// BillDTO represents a bill payload returned to clients. Monetary fields are
// duplicated as cents and as formatted two-decimal display strings.
type BillDTO struct {
	ID            uuid.UUID     `json:"id"`
	OrderNumber   string        `json:"order_number"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone *string       `json:"customer_phone,omitempty"`
	CashierName   string        `json:"cashier_name"`
	PaymentMethod string        `json:"payment_method"`
	TaxRate       string        `json:"tax_rate"`
	SubtotalCents int64         `json:"subtotal_cents"`
	TaxCents      int64         `json:"tax_cents"`
	TotalCents    int64         `json:"total_cents"`
	Subtotal      string        `json:"subtotal"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Lines         []BillLineDTO `json:"lines"`
	CreatedAt     time.Time     `json:"created_at"`
}

// BillLineDTO is one frozen line item on a bill.
type BillLineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
	LineTotal      string    `json:"line_total"`
}

// NewBillDTO maps the persisted bill into its response shape.
func NewBillDTO(bill *models.Bill) *BillDTO {
	if bill == nil {
		return nil
	}
	lines := make([]BillLineDTO, 0, len(bill.Lines))
	for _, line := range bill.Lines {
		lines = append(lines, BillLineDTO{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			UnitPriceCents: line.UnitPriceCents,
			UnitPrice:      money.Format(line.UnitPriceCents),
			Quantity:       line.Quantity,
			LineTotalCents: line.LineTotalCents,
			LineTotal:      money.Format(line.LineTotalCents),
		})
	}
	return &BillDTO{
		ID:            bill.ID,
		OrderNumber:   bill.OrderNumber,
		CustomerName:  bill.CustomerName,
		CustomerPhone: bill.CustomerPhone,
		CashierName:   bill.CashierName,
		PaymentMethod: bill.PaymentMethod.String(),
		TaxRate:       bill.TaxRate,
		SubtotalCents: bill.SubtotalCents,
		TaxCents:      bill.TaxCents,
		TotalCents:    bill.TotalCents,
		Subtotal:      money.Format(bill.SubtotalCents),
		Tax:           money.Format(bill.TaxCents),
		Total:         money.Format(bill.TotalCents),
		Lines:         lines,
		CreatedAt:     bill.CreatedAt,
	}
}

// BillListResult is one page of bills plus entry counters.
type BillListResult struct {
	Bills        []BillDTO `json:"bills"`
	StartEntry   int       `json:"start_entry"`
	EndEntry     int       `json:"end_entry"`
	TotalEntries int       `json:"total_entries"`
}
