package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Bill is the immutable snapshot of a completed checkout. Rows are written
// once and never updated; refunds reference them.
type Bill struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerPhone *string             `gorm:"column:customer_phone"`
	CashierName   string              `gorm:"column:cashier_name;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	TaxRate       string              `gorm:"column:tax_rate;not null"`
	SubtotalCents int64               `gorm:"column:subtotal_cents;not null"`
	TaxCents      int64               `gorm:"column:tax_cents;not null"`
	TotalCents    int64               `gorm:"column:total_cents;not null"`
	Lines         []BillLineItem      `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// BillLineItem is one product-and-quantity entry frozen into a bill.
type BillLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BillID         uuid.UUID `gorm:"column:bill_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null"`
}
