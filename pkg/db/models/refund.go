package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Refund is a request to return money against a completed bill.
type Refund struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	BillID      uuid.UUID          `gorm:"column:bill_id;type:uuid;not null;index"`
	OrderNumber string             `gorm:"column:order_number;not null"`
	AmountCents int64              `gorm:"column:amount_cents;not null"`
	Reason      string             `gorm:"column:reason;not null"`
	Notes       *string            `gorm:"column:notes"`
	ProcessedBy string             `gorm:"column:processed_by;not null"`
	Status      enums.RefundStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
