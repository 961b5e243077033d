package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
	"github.com/minpaku-suite/minpaku-backend/pkg/logger"
	"github.com/minpaku-suite/minpaku-backend/pkg/metrics"
)

// RecordEntryInput describes a new ledger entry. The amount is signed:
// charges positive, refunds and credits negative.
type RecordEntryInput struct {
	BookingID uuid.UUID
	Kind      enums.LedgerEventKind
	Amount    decimal.Decimal
	Currency  enums.Currency
	Metadata  map[string]any
}

// Entry is a ledger row enriched with display fields.
type Entry struct {
	models.LedgerEntry
	Label           string
	FormattedAmount string
	FormattedDate   string
}

// Summary aggregates a booking's full ledger history.
type Summary struct {
	TotalEntries int
	Events       map[enums.LedgerEventKind]int
	Amounts      map[enums.Currency]decimal.Decimal
	FirstEntry   *Entry
	LastEntry    *Entry
}

// Service exposes the booking ledger: appending entries and reading them
// back individually, in pages, or as aggregates.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, bookingID uuid.UUID, input ListInput) ([]Entry, error)
	Count(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind) (int64, error)
	TotalAmount(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind, currency enums.Currency) (decimal.Decimal, error)
	Summarize(ctx context.Context, bookingID uuid.UUID) (*Summary, error)
	DeleteForBooking(ctx context.Context, bookingID uuid.UUID) error
}

type service struct {
	repo    Repository
	log     *logger.Logger
	metrics *metrics.BookingMetrics
}

// NewService builds the ledger service. Logger and metrics are optional.
func NewService(repo Repository, log *logger.Logger, m *metrics.BookingMetrics) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service requires a repository")
	}
	return &service{repo: repo, log: log, metrics: m}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), log: s.log, metrics: s.metrics}
}

// RecordEntry validates and appends one entry. Invalid input writes nothing.
func (s *service) RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger entry requires a booking id")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ledger event kind").
			WithDetails(map[string]any{"kind": string(input.Kind)})
	}

	currency := input.Currency
	if !currency.IsValid() {
		currency = enums.DefaultCurrency
	}

	entry := &models.LedgerEntry{
		BookingID: input.BookingID,
		Kind:      input.Kind,
		Amount:    input.Amount,
		Currency:  currency,
		Metadata:  input.Metadata,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}

	s.metrics.ObserveLedgerAppend(entry.Kind.String())
	if s.log != nil {
		logCtx := s.log.WithFields(s.log.WithBookingID(ctx, entry.BookingID.String()), map[string]any{
			"entry_id": entry.ID.String(),
			"kind":     entry.Kind.String(),
			"amount":   entry.Amount.String(),
			"currency": entry.Currency.String(),
		})
		s.log.Info(logCtx, "ledger entry appended")
	}
	return entry, nil
}

func (s *service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entry")
	}
	entry := enrich(*row)
	return &entry, nil
}

func (s *service) List(ctx context.Context, bookingID uuid.UUID, input ListInput) ([]Entry, error) {
	rows, err := s.repo.List(ctx, bookingID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, enrich(row))
	}
	return entries, nil
}

func (s *service) Count(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind) (int64, error) {
	return s.repo.Count(ctx, bookingID, kind)
}

func (s *service) TotalAmount(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind, currency enums.Currency) (decimal.Decimal, error) {
	if !currency.IsValid() {
		currency = enums.DefaultCurrency
	}
	return s.repo.SumAmount(ctx, bookingID, kind, currency)
}

// Summarize scans the booking's full history in insertion order and folds
// it into per-kind counts and per-currency totals.
func (s *service) Summarize(ctx context.Context, bookingID uuid.UUID) (*Summary, error) {
	rows, err := s.repo.ListAll(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan ledger history")
	}

	summary := &Summary{
		TotalEntries: len(rows),
		Events:       make(map[enums.LedgerEventKind]int),
		Amounts:      make(map[enums.Currency]decimal.Decimal),
	}
	for i, row := range rows {
		summary.Events[row.Kind]++
		summary.Amounts[row.Currency] = summary.Amounts[row.Currency].Add(row.Amount)
		if i == 0 {
			first := enrich(row)
			summary.FirstEntry = &first
		}
		if i == len(rows)-1 {
			last := enrich(row)
			summary.LastEntry = &last
		}
	}
	return summary, nil
}

func (s *service) DeleteForBooking(ctx context.Context, bookingID uuid.UUID) error {
	deleted, err := s.repo.DeleteForBooking(ctx, bookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking ledger")
	}
	if s.log != nil && deleted > 0 {
		logCtx := s.log.WithField(s.log.WithBookingID(ctx, bookingID.String()), "deleted", deleted)
		s.log.Info(logCtx, "ledger entries deleted")
	}
	return nil
}

func enrich(row models.LedgerEntry) Entry {
	return Entry{
		LedgerEntry:     row,
		Label:           row.Kind.Label(),
		FormattedAmount: FormatAmount(row.Amount, row.Currency),
		FormattedDate:   FormatDate(row.CreatedAt),
	}
}
