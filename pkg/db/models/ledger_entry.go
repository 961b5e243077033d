package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
)

// LedgerEntry records an immutable lifecycle or monetary event tied to a
// booking. Rows are append-only; corrections are compensating entries.
type LedgerEntry struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	BookingID uuid.UUID             `gorm:"column:booking_id;type:uuid;not null;index"`
	Kind      enums.LedgerEventKind `gorm:"column:kind;type:text;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency  enums.Currency        `gorm:"column:currency;type:text;not null;default:'JPY'"`
	Metadata  map[string]any        `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt time.Time             `gorm:"column:created_at;not null"`
}
