package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	"github.com/minpaku-suite/minpaku-backend/pkg/logger"
)

// Transition guard error codes, surfaced on TransitionResult.
const (
	ErrCodeInvalidTransition    = "invalid_transition"
	ErrCodeMissingProperty      = "missing_property"
	ErrCodeMissingDates         = "missing_dates"
	ErrCodeInvalidDateOrder     = "invalid_date_order"
	ErrCodeInvalidGuestCount    = "invalid_guest_count"
	ErrCodeMissingPaymentMethod = "missing_payment_method"
	ErrCodePrematureCompletion  = "premature_completion"
)

// MetaKeyPaymentMethod must be present in the transition metadata when
// confirming a booking.
const MetaKeyPaymentMethod = "payment_method"

// Booking is a reservation for a property over a date range. It owns the
// state machine; persistence is the repository's concern.
type Booking struct {
	id         uuid.UUID
	propertyID uuid.UUID
	checkin    time.Time
	checkout   time.Time
	adults     int
	children   int
	state      enums.BookingState
	createdAt  time.Time
	updatedAt  time.Time
	metadata   map[string]any

	log *logger.Logger
	now func() time.Time
}

// NewBookingInput carries the initial field values. Zero values take the
// documented defaults: adults 1, children 0, state draft, timestamps now.
type NewBookingInput struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	Checkin    time.Time
	Checkout   time.Time
	Adults     int
	Children   int
	State      enums.BookingState
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Metadata   map[string]any
}

// Option customizes a booking's collaborators.
type Option func(*Booking)

// WithLogger attaches an optional structured logger. Transitions log through
// it when present; a nil logger is a no-op.
func WithLogger(log *logger.Logger) Option {
	return func(b *Booking) {
		b.log = log
	}
}

// WithClock overrides the time source. Intended for tests and for callers
// that need deterministic completion checks.
func WithClock(now func() time.Time) Option {
	return func(b *Booking) {
		if now != nil {
			b.now = now
		}
	}
}

// New constructs a booking, applying defaults and clamping guest counts.
func New(input NewBookingInput, opts ...Option) *Booking {
	b := &Booking{
		id:         input.ID,
		propertyID: input.PropertyID,
		checkin:    truncateToDate(input.Checkin),
		checkout:   truncateToDate(input.Checkout),
		adults:     input.Adults,
		children:   input.Children,
		state:      input.State,
		createdAt:  input.CreatedAt,
		updatedAt:  input.UpdatedAt,
		metadata:   copyMeta(input.Metadata),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.adults < 1 {
		b.adults = 1
	}
	if b.children < 0 {
		b.children = 0
	}
	if !b.state.IsValid() {
		b.state = enums.BookingStateDraft
	}
	if b.createdAt.IsZero() {
		b.createdAt = b.now()
	}
	if b.updatedAt.IsZero() {
		b.updatedAt = b.createdAt
	}
	return b
}

// CanTransition reports whether the transition table allows from -> to.
// Same-state moves and moves out of terminal states are never allowed.
func CanTransition(from, to enums.BookingState) bool {
	return from.CanTransitionTo(to)
}

// TransitionFailureReason explains why from -> to is disallowed, or returns
// an empty string if the table permits it. Diagnostic text only; callers must
// not branch on it.
func TransitionFailureReason(from, to enums.BookingState) string {
	if !from.IsValid() {
		return fmt.Sprintf("invalid source state: %s", from)
	}
	if !to.IsValid() {
		return fmt.Sprintf("invalid target state: %s", to)
	}
	if from == to {
		return "source and target states are the same"
	}
	if from.IsTerminal() {
		return fmt.Sprintf("cannot transition from terminal state: %s", from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Sprintf("transition from %s to %s is not allowed", from, to)
	}
	return ""
}

// TransitionTo attempts to move the booking into the target state. Failures
// come back as a value on the result, never as an error; the booking is left
// untouched unless the result reports success.
func (b *Booking) TransitionTo(to enums.BookingState, meta map[string]any) TransitionResult {
	from := b.state

	if !CanTransition(from, to) {
		return Failure(ErrCodeInvalidTransition, TransitionFailureReason(from, to), map[string]any{
			"from":       from.String(),
			"to":         to.String(),
			"booking_id": b.id,
		})
	}

	if code, message, ok := b.validateTransition(to, meta); !ok {
		failureMeta := copyMeta(meta)
		failureMeta["from"] = from.String()
		failureMeta["to"] = to.String()
		return Failure(code, message, failureMeta)
	}

	b.state = to
	b.updatedAt = b.now()

	if b.log != nil {
		ctx := b.log.WithFields(context.Background(), map[string]any{
			"booking_id": b.id.String(),
			"from":       from.String(),
			"to":         to.String(),
		})
		b.log.Info(ctx, "booking state transition")
	}

	successMeta := copyMeta(meta)
	successMeta["from"] = from.String()
	successMeta["to"] = to.String()
	successMeta["booking_id"] = b.id
	successMeta["transitioned_at"] = b.updatedAt
	return Success(to, successMeta)
}

// validateTransition runs the guard checks for the target state. The four
// universal data gates run on every transition, in fixed order, before the
// state-specific gate.
func (b *Booking) validateTransition(to enums.BookingState, meta map[string]any) (code, message string, ok bool) {
	if b.propertyID == uuid.Nil {
		return ErrCodeMissingProperty, "property id is required", false
	}
	if b.checkin.IsZero() || b.checkout.IsZero() {
		return ErrCodeMissingDates, "check-in and check-out dates are required", false
	}
	if !b.checkin.Before(b.checkout) {
		return ErrCodeInvalidDateOrder, "check-out date must be after check-in date", false
	}
	if b.adults < 1 {
		return ErrCodeInvalidGuestCount, "at least one adult guest is required", false
	}

	switch to {
	case enums.BookingStateConfirmed:
		method, _ := meta[MetaKeyPaymentMethod].(string)
		if strings.TrimSpace(method) == "" {
			return ErrCodeMissingPaymentMethod, "payment method is required for confirmation", false
		}
	case enums.BookingStateCompleted:
		if b.checkout.After(b.now()) {
			return ErrCodePrematureCompletion, "cannot complete booking before check-out date", false
		}
	}

	return "", "", true
}

// ID returns the booking identifier; uuid.Nil until persisted.
func (b *Booking) ID() uuid.UUID {
	return b.id
}

// SetID assigns the storage identifier. Called by the repository on first
// save; it does not touch updatedAt.
func (b *Booking) SetID(id uuid.UUID) {
	b.id = id
}

func (b *Booking) PropertyID() uuid.UUID {
	return b.propertyID
}

func (b *Booking) SetPropertyID(propertyID uuid.UUID) {
	b.propertyID = propertyID
	b.touch()
}

func (b *Booking) Checkin() time.Time {
	return b.checkin
}

func (b *Booking) SetCheckin(checkin time.Time) {
	b.checkin = truncateToDate(checkin)
	b.touch()
}

func (b *Booking) Checkout() time.Time {
	return b.checkout
}

func (b *Booking) SetCheckout(checkout time.Time) {
	b.checkout = truncateToDate(checkout)
	b.touch()
}

func (b *Booking) Adults() int {
	return b.adults
}

// SetAdults clamps to a minimum of one adult.
func (b *Booking) SetAdults(adults int) {
	if adults < 1 {
		adults = 1
	}
	b.adults = adults
	b.touch()
}

func (b *Booking) Children() int {
	return b.children
}

// SetChildren clamps to a minimum of zero.
func (b *Booking) SetChildren(children int) {
	if children < 0 {
		children = 0
	}
	b.children = children
	b.touch()
}

// TotalGuests is adults plus children.
func (b *Booking) TotalGuests() int {
	return b.adults + b.children
}

func (b *Booking) State() enums.BookingState {
	return b.state
}

func (b *Booking) CreatedAt() time.Time {
	return b.createdAt
}

func (b *Booking) UpdatedAt() time.Time {
	return b.updatedAt
}

// Metadata returns a copy of the free-form metadata map.
func (b *Booking) Metadata() map[string]any {
	return copyMeta(b.metadata)
}

// MetaValue returns the metadata value for key, or fallback when absent.
func (b *Booking) MetaValue(key string, fallback any) any {
	if value, ok := b.metadata[key]; ok {
		return value
	}
	return fallback
}

func (b *Booking) SetMetaValue(key string, value any) {
	if b.metadata == nil {
		b.metadata = map[string]any{}
	}
	b.metadata[key] = value
	b.touch()
}

// MergeMetadata merges the supplied values into the metadata map.
func (b *Booking) MergeMetadata(meta map[string]any) {
	if b.metadata == nil {
		b.metadata = map[string]any{}
	}
	for key, value := range meta {
		b.metadata[key] = value
	}
	b.touch()
}

// Nights is the calendar-day difference between checkout and checkin, or
// zero when either date is missing.
func (b *Booking) Nights() int {
	if b.checkin.IsZero() || b.checkout.IsZero() {
		return 0
	}
	nights := int(b.checkout.Sub(b.checkin).Hours() / 24)
	if nights < 0 {
		nights = -nights
	}
	return nights
}

// IsTerminal reports whether the booking reached a terminal state.
func (b *Booking) IsTerminal() bool {
	return b.state.IsTerminal()
}

// CanBeModified reports whether the booking still accepts changes.
func (b *Booking) CanBeModified() bool {
	return !b.IsTerminal()
}

// ToMap produces a full snapshot including derived fields.
func (b *Booking) ToMap() map[string]any {
	return map[string]any{
		"id":              b.id,
		"property_id":     b.propertyID,
		"checkin":         b.checkin,
		"checkout":        b.checkout,
		"adults":          b.adults,
		"children":        b.children,
		"total_guests":    b.TotalGuests(),
		"nights":          b.Nights(),
		"state":           b.state.String(),
		"created_at":      b.createdAt,
		"updated_at":      b.updatedAt,
		"metadata":        b.Metadata(),
		"is_terminal":     b.IsTerminal(),
		"can_be_modified": b.CanBeModified(),
	}
}

func (b *Booking) touch() {
	b.updatedAt = b.now()
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func copyMeta(meta map[string]any) map[string]any {
	copied := make(map[string]any, len(meta))
	for key, value := range meta {
		copied[key] = value
	}
	return copied
}
