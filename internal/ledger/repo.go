package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	"github.com/minpaku-suite/minpaku-backend/pkg/pagination"
)

// ListInput filters and paginates ledger listings for one booking.
type ListInput struct {
	Kind *enums.LedgerEventKind
	Page pagination.Params
}

// Repository manages persistence for ledger entries. Entries are append-only:
// there is no update surface, only create, read and bulk delete.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	Find(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	List(ctx context.Context, bookingID uuid.UUID, input ListInput) ([]models.LedgerEntry, error)
	ListAll(ctx context.Context, bookingID uuid.UUID) ([]models.LedgerEntry, error)
	Count(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind) (int64, error)
	SumAmount(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind, currency enums.Currency) (decimal.Decimal, error)
	DeleteForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, bookingID uuid.UUID, input ListInput) ([]models.LedgerEntry, error) {
	page := input.Page.Normalize()

	query := r.bookingQuery(ctx, bookingID, input.Kind).
		Order(fmt.Sprintf("created_at %s, id %s", page.Order, page.Order)).
		Limit(page.Limit).
		Offset(page.Offset)

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAll returns every entry for the booking in ascending creation order.
// Used by summaries, which scan the full unpaginated history.
func (r *repository) ListAll(ctx context.Context, bookingID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.bookingQuery(ctx, bookingID, nil).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Count(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind) (int64, error) {
	var count int64
	if err := r.bookingQuery(ctx, bookingID, kind).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumAmount totals entry amounts for the booking in the given currency.
// Entries in other currencies are ignored.
func (r *repository) SumAmount(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind, currency enums.Currency) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.bookingQuery(ctx, bookingID, kind).
		Where("currency = ?", currency).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *repository) DeleteForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.LedgerEntry{}, "booking_id = ?", bookingID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) bookingQuery(ctx context.Context, bookingID uuid.UUID, kind *enums.LedgerEventKind) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("booking_id = ?", bookingID)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	return query
}
