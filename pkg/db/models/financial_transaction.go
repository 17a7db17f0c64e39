package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// FinancialTransaction is one row in the money ledger. Sales and refunds are
// written automatically by their services; expenses are entered by staff.
type FinancialTransaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Type        enums.TransactionType `gorm:"column:type;not null;index"`
	Category    string                `gorm:"column:category;not null"`
	Description string                `gorm:"column:description;not null"`
	AmountCents int64                 `gorm:"column:amount_cents;not null"`
	ReferenceID *uuid.UUID            `gorm:"column:reference_id;type:uuid"`
	OccurredAt  time.Time             `gorm:"column:occurred_at;not null;index"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
