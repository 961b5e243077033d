package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
	"github.com/minpaku-suite/minpaku-backend/pkg/pagination"
)

// ListByPropertyInput filters and paginates property booking listings.
type ListByPropertyInput struct {
	State    *enums.BookingState
	DateFrom *time.Time
	DateTo   *time.Time
	Page     pagination.Params
}

// Repository persists and reconstructs booking entities. It performs no
// lifecycle validation; that stays on the entity.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id uuid.UUID, force bool) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, input ListByPropertyInput) ([]*Booking, error)
	CountByProperty(ctx context.Context, propertyID uuid.UUID, input ListByPropertyInput) (int64, error)
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkin, checkout time.Time, excludeID *uuid.UUID) ([]*Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a booking repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var row models.Booking
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

// Save writes the booking, assigning an identifier on first save.
func (r *repository) Save(ctx context.Context, booking *Booking) error {
	if booking == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking is required")
	}

	if booking.ID() == uuid.Nil {
		booking.SetID(uuid.New())
		row := toRow(booking)
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			booking.SetID(uuid.Nil)
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	}

	row := toRow(booking)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// Delete removes a booking row. Non-draft bookings are refused unless force
// is set.
func (r *repository) Delete(ctx context.Context, id uuid.UUID, force bool) error {
	var row models.Booking
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return err
	}

	if !force && row.State != enums.BookingStateDraft {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft bookings can be deleted")
	}

	if err := r.db.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (r *repository) ListByProperty(ctx context.Context, propertyID uuid.UUID, input ListByPropertyInput) ([]*Booking, error) {
	page := input.Page.Normalize()

	query := r.propertyQuery(ctx, propertyID, input).
		Order(fmt.Sprintf("created_at %s, id %s", page.Order, page.Order)).
		Limit(page.Limit).
		Offset(page.Offset)

	var rows []models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	bookings := make([]*Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, fromRow(row))
	}
	return bookings, nil
}

func (r *repository) CountByProperty(ctx context.Context, propertyID uuid.UUID, input ListByPropertyInput) (int64, error) {
	var count int64
	if err := r.propertyQuery(ctx, propertyID, input).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOverlapping returns non-cancelled bookings whose stay intersects the
// half-open [checkin, checkout) range. Callers use it to enforce
// no-double-booking before transitioning.
func (r *repository) FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkin, checkout time.Time, excludeID *uuid.UUID) ([]*Booking, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("property_id = ?", propertyID).
		Where("state <> ?", enums.BookingStateCancelled).
		Where("checkin IS NOT NULL AND checkout IS NOT NULL").
		Where("checkin < ? AND checkout > ?", checkout, checkin).
		Order("checkin ASC, id ASC")

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	bookings := make([]*Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, fromRow(row))
	}
	return bookings, nil
}

func (r *repository) propertyQuery(ctx context.Context, propertyID uuid.UUID, input ListByPropertyInput) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("property_id = ?", propertyID)

	if input.State != nil {
		query = query.Where("state = ?", *input.State)
	}
	if input.DateFrom != nil {
		query = query.Where("checkin >= ?", *input.DateFrom)
	}
	if input.DateTo != nil {
		query = query.Where("checkout <= ?", *input.DateTo)
	}
	return query
}

func toRow(booking *Booking) models.Booking {
	row := models.Booking{
		ID:         booking.ID(),
		PropertyID: booking.PropertyID(),
		Adults:     booking.Adults(),
		Children:   booking.Children(),
		State:      booking.State(),
		Metadata:   booking.Metadata(),
		CreatedAt:  booking.CreatedAt(),
		UpdatedAt:  booking.UpdatedAt(),
	}
	if checkin := booking.Checkin(); !checkin.IsZero() {
		row.Checkin = &checkin
	}
	if checkout := booking.Checkout(); !checkout.IsZero() {
		row.Checkout = &checkout
	}
	return row
}

func fromRow(row models.Booking) *Booking {
	input := NewBookingInput{
		ID:         row.ID,
		PropertyID: row.PropertyID,
		Adults:     row.Adults,
		Children:   row.Children,
		State:      row.State,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		Metadata:   row.Metadata,
	}
	if row.Checkin != nil {
		input.Checkin = *row.Checkin
	}
	if row.Checkout != nil {
		input.Checkout = *row.Checkout
	}
	return New(input)
}
