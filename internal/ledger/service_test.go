package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	svc, err := NewService(repo, nil, nil)
	require.NoError(t, err)
	return svc, repo
}

func TestServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestRecordEntry(t *testing.T) {
	svc, _ := newTestService(t)
	bookingID := uuid.New()

	entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
		BookingID: bookingID,
		Kind:      enums.LedgerEventPayment,
		Amount:    decimal.NewFromInt(15000),
		Currency:  enums.CurrencyJPY,
		Metadata:  map[string]any{"method": "card"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, bookingID, entry.BookingID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestRecordEntryDefaultsCurrency(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
		BookingID: uuid.New(),
		Kind:      enums.LedgerEventNote,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DefaultCurrency, entry.Currency)
}

func TestRecordEntryRejectsInvalidInput(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := svc.RecordEntry(ctx, RecordEntryInput{
		Kind: enums.LedgerEventPayment,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.RecordEntry(ctx, RecordEntryInput{
		BookingID: bookingID,
		Kind:      "bogus",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	// Rejected input writes no row.
	count, err := repo.Count(ctx, bookingID, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListEnrichesEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	_, err := svc.RecordEntry(ctx, RecordEntryInput{
		BookingID: bookingID,
		Kind:      enums.LedgerEventPayment,
		Amount:    decimal.NewFromInt(15000),
		Currency:  enums.CurrencyJPY,
	})
	require.NoError(t, err)

	entries, err := svc.List(ctx, bookingID, ListInput{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Payment", entries[0].Label)
	assert.Equal(t, "15,000 JPY", entries[0].FormattedAmount)
	assert.NotEmpty(t, entries[0].FormattedDate)
}

func TestTotalAmountAfterRefund(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	for _, amount := range []int64{15000, -5000} {
		kind := enums.LedgerEventPayment
		if amount < 0 {
			kind = enums.LedgerEventRefund
		}
		_, err := svc.RecordEntry(ctx, RecordEntryInput{
			BookingID: bookingID,
			Kind:      kind,
			Amount:    decimal.NewFromInt(amount),
			Currency:  enums.CurrencyJPY,
		})
		require.NoError(t, err)
	}

	total, err := svc.TotalAmount(ctx, bookingID, nil, enums.CurrencyJPY)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(10000)), "got %s", total)
}

func TestSummarize(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	bookingID := uuid.New()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	appendEntry(t, repo, bookingID, enums.LedgerEventReserve, 0, base)
	appendEntry(t, repo, bookingID, enums.LedgerEventPayment, 15000, base.Add(time.Minute))
	appendEntry(t, repo, bookingID, enums.LedgerEventPayment, 3000, base.Add(2*time.Minute))
	appendEntry(t, repo, bookingID, enums.LedgerEventRefund, -5000, base.Add(3*time.Minute))

	summary, err := svc.Summarize(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalEntries)
	assert.Equal(t, 2, summary.Events[enums.LedgerEventPayment])
	assert.Equal(t, 1, summary.Events[enums.LedgerEventReserve])
	assert.True(t, summary.Amounts[enums.CurrencyJPY].Equal(decimal.NewFromInt(13000)))
	require.NotNil(t, summary.FirstEntry)
	require.NotNil(t, summary.LastEntry)
	assert.Equal(t, enums.LedgerEventReserve, summary.FirstEntry.Kind)
	assert.Equal(t, enums.LedgerEventRefund, summary.LastEntry.Kind)
}

func TestSummarizeEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	summary, err := svc.Summarize(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalEntries)
	assert.Nil(t, summary.FirstEntry)
	assert.Nil(t, summary.LastEntry)
}

func TestGetEntryNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetEntry(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
