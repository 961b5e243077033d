package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
)

// Booking is the persisted row behind a booking entity. Lifecycle rules live
// in internal/bookings; this struct only describes storage.
type Booking struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	PropertyID uuid.UUID          `gorm:"column:property_id;type:uuid;not null"`
	Checkin    *time.Time         `gorm:"column:checkin;type:date"`
	Checkout   *time.Time         `gorm:"column:checkout;type:date"`
	Adults     int                `gorm:"column:adults;not null;default:1"`
	Children   int                `gorm:"column:children;not null;default:0"`
	State      enums.BookingState `gorm:"column:state;type:text;not null;default:'draft'"`
	Metadata   map[string]any     `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt  time.Time          `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;not null"`
}
