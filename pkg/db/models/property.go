package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
)

// SeasonRate overrides the base nightly rate for a date range (inclusive).
type SeasonRate struct {
	Name        string          `json:"name"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
}

// Property holds the listing fields the pricing and availability services
// need. Listing content (title, photos, description) is out of scope.
type Property struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name                 string          `gorm:"column:name;not null"`
	Currency             enums.Currency  `gorm:"column:currency;type:text;not null;default:'JPY'"`
	BaseNightlyRate      decimal.Decimal `gorm:"column:base_nightly_rate;type:numeric(14,2);not null"`
	WeekendMarkupPercent decimal.Decimal `gorm:"column:weekend_markup_percent;type:numeric(5,2);not null;default:0"`
	SeasonRates          []SeasonRate    `gorm:"column:season_rates;type:jsonb;serializer:json"`
	CleaningFee          decimal.Decimal `gorm:"column:cleaning_fee;type:numeric(14,2);not null;default:0"`
	ServiceFeePercent    decimal.Decimal `gorm:"column:service_fee_percent;type:numeric(5,2);not null;default:0"`
	ExtraGuestFee        decimal.Decimal `gorm:"column:extra_guest_fee;type:numeric(14,2);not null;default:0"`
	IncludedGuests       int             `gorm:"column:included_guests;not null;default:2"`
	MaxGuests            int             `gorm:"column:max_guests;not null;default:4"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
