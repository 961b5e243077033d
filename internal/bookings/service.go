package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minpaku-suite/minpaku-backend/internal/ledger"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
	"github.com/minpaku-suite/minpaku-backend/pkg/logger"
	"github.com/minpaku-suite/minpaku-backend/pkg/metrics"
)

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CacheInvalidator drops cached availability for a property after its
// bookings change.
type CacheInvalidator interface {
	InvalidateProperty(ctx context.Context, propertyID uuid.UUID) error
}

// ledgerEventsByState maps a transition target onto the ledger event
// recorded for it.
var ledgerEventsByState = map[enums.BookingState]enums.LedgerEventKind{
	enums.BookingStatePending:   enums.LedgerEventReserve,
	enums.BookingStateConfirmed: enums.LedgerEventConfirm,
	enums.BookingStateCancelled: enums.LedgerEventCancel,
	enums.BookingStateCompleted: enums.LedgerEventComplete,
}

// Service orchestrates booking lifecycle operations: it loads entities,
// delegates transition decisions to them, and on success persists the new
// state together with a ledger entry in one transaction.
//
// Last write wins when two callers race on the same booking: there is no
// version token, matching single-writer deployments.
type Service struct {
	repo    Repository
	ledger  ledger.Service
	tx      txRunner
	cache   CacheInvalidator
	log     *logger.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

// ServiceOption tweaks optional service collaborators.
type ServiceOption func(*Service)

func WithCacheInvalidator(cache CacheInvalidator) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.BookingMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the booking service. Repository, ledger service and
// transaction runner are required; logger may be nil.
func NewService(repo Repository, ledgerSvc ledger.Service, tx txRunner, log *logger.Logger, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking service requires a repository")
	}
	if ledgerSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking service requires a ledger service")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking service requires a transaction runner")
	}

	svc := &Service{
		repo:   repo,
		ledger: ledgerSvc,
		tx:     tx,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create builds a draft booking from the input and persists it.
func (s *Service) Create(ctx context.Context, input NewBookingInput) (*Booking, error) {
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking requires a property id")
	}

	booking := New(input, WithLogger(s.log), WithClock(s.now))
	if err := s.repo.Save(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking")
	}

	s.invalidate(ctx, booking.PropertyID())
	if s.log != nil {
		logCtx := s.log.WithBookingID(ctx, booking.ID().String())
		s.log.Info(s.log.WithPropertyID(logCtx, booking.PropertyID().String()), "booking created")
	}
	return booking, nil
}

// Get loads one booking by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	booking.log = s.log
	booking.now = s.now
	return booking, nil
}

// Update applies field changes to a modifiable booking and persists them.
// Terminal bookings reject updates.
func (s *Service) Update(ctx context.Context, id uuid.UUID, apply func(*Booking)) (*Booking, error) {
	if apply == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "update requires a mutation")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanBeModified() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is in a terminal state").
			WithDetails(map[string]any{"state": booking.State().String()})
	}

	apply(booking)
	if err := s.repo.Save(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking")
	}

	s.invalidate(ctx, booking.PropertyID())
	return booking, nil
}

// Transition attempts to move the booking into the target state. Guard
// failures come back inside the TransitionResult with a nil error; the
// error return is reserved for load and persistence problems. On success
// the new state and its ledger entry commit atomically.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target enums.BookingState, meta map[string]any) (TransitionResult, *Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return TransitionResult{}, nil, err
	}

	from := booking.State()
	result := booking.TransitionTo(target, meta)
	if !result.IsSuccess() {
		s.metrics.ObserveTransition(from.String(), target.String(), metrics.OutcomeFailure)
		return result, booking, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, booking); err != nil {
			return err
		}
		kind, ok := ledgerEventsByState[booking.State()]
		if !ok {
			return nil
		}
		_, err := s.ledger.WithTx(tx).RecordEntry(ctx, ledger.RecordEntryInput{
			BookingID: booking.ID(),
			Kind:      kind,
			Amount:    amountFromMeta(meta),
			Currency:  currencyFromMeta(meta),
			Metadata:  result.Meta(),
		})
		return err
	})
	if err != nil {
		s.metrics.ObserveTransition(from.String(), target.String(), metrics.OutcomeFailure)
		return TransitionResult{}, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit transition")
	}

	s.metrics.ObserveTransition(from.String(), target.String(), metrics.OutcomeSuccess)
	s.invalidate(ctx, booking.PropertyID())
	return result, booking, nil
}

// Delete removes a booking and its ledger history in one transaction.
// Only draft bookings delete unless force is set.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, force bool) error {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id, force); err != nil {
			return err
		}
		return s.ledger.WithTx(tx).DeleteForBooking(ctx, id)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking")
	}

	s.invalidate(ctx, booking.PropertyID())
	if s.log != nil {
		s.log.Info(s.log.WithBookingID(ctx, id.String()), "booking deleted")
	}
	return nil
}

// ListByProperty pages through a property's bookings.
func (s *Service) ListByProperty(ctx context.Context, propertyID uuid.UUID, input ListByPropertyInput) ([]*Booking, error) {
	list, err := s.repo.ListByProperty(ctx, propertyID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	for _, booking := range list {
		booking.log = s.log
		booking.now = s.now
	}
	return list, nil
}

func (s *Service) invalidate(ctx context.Context, propertyID uuid.UUID) {
	if s.cache == nil || propertyID == uuid.Nil {
		return
	}
	if err := s.cache.InvalidateProperty(ctx, propertyID); err != nil && s.log != nil {
		s.log.Warn(s.log.WithPropertyID(ctx, propertyID.String()), "availability cache invalidation failed")
	}
}

func amountFromMeta(meta map[string]any) decimal.Decimal {
	raw, ok := meta["amount"]
	if !ok {
		return decimal.Zero
	}
	switch v := raw.(type) {
	case decimal.Decimal:
		return v
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	return decimal.Zero
}

func currencyFromMeta(meta map[string]any) enums.Currency {
	if raw, ok := meta["currency"].(string); ok {
		if currency, err := enums.ParseCurrency(raw); err == nil {
			return currency
		}
	}
	return enums.DefaultCurrency
}
