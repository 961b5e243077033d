package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
)

func yen(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testProperty() *models.Property {
	return &models.Property{
		Name:            "Kyoto Machiya",
		Currency:        enums.CurrencyJPY,
		BaseNightlyRate: yen(10000),
		IncludedGuests:  2,
		MaxGuests:       4,
	}
}

// 2026-03-02 is a Monday.
func night(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestQuoteBaseRateWeeknights(t *testing.T) {
	quote, err := QuoteStay(QuoteInput{
		Property: testProperty(),
		Checkin:  night(2),
		Checkout: night(5),
		Adults:   2,
	})
	require.NoError(t, err)

	require.Len(t, quote.Nights, 3)
	assert.True(t, quote.NightsSubtotal.Equal(yen(30000)), "subtotal %s", quote.NightsSubtotal)
	assert.True(t, quote.Total.Equal(yen(30000)), "total %s", quote.Total)
	assert.Equal(t, enums.CurrencyJPY, quote.Currency)
}

func TestQuoteWeekendMarkup(t *testing.T) {
	property := testProperty()
	property.WeekendMarkupPercent = decimal.NewFromInt(20)

	// Friday 2026-03-06 and Saturday 2026-03-07 carry the markup.
	quote, err := QuoteStay(QuoteInput{
		Property: property,
		Checkin:  night(5),
		Checkout: night(8),
		Adults:   2,
	})
	require.NoError(t, err)

	require.Len(t, quote.Nights, 3)
	assert.False(t, quote.Nights[0].Weekend)
	assert.True(t, quote.Nights[1].Weekend)
	assert.True(t, quote.Nights[2].Weekend)
	// 10000 + 12000 + 12000
	assert.True(t, quote.NightsSubtotal.Equal(yen(34000)), "subtotal %s", quote.NightsSubtotal)
}

func TestQuoteSeasonOverridesBaseRate(t *testing.T) {
	property := testProperty()
	property.WeekendMarkupPercent = decimal.NewFromInt(10)
	property.SeasonRates = []models.SeasonRate{
		{
			Name:        "Sakura",
			Start:       night(6),
			End:         night(31),
			NightlyRate: yen(20000),
		},
	}

	quote, err := QuoteStay(QuoteInput{
		Property: property,
		Checkin:  night(5),
		Checkout: night(9),
		Adults:   2,
	})
	require.NoError(t, err)

	require.Len(t, quote.Nights, 4)
	// Thursday before the season keeps the base rate.
	assert.Equal(t, "", quote.Nights[0].SeasonName)
	assert.True(t, quote.Nights[0].Rate.Equal(yen(10000)), "thursday %s", quote.Nights[0].Rate)
	// Weekend markup stacks on the seasonal rate.
	assert.Equal(t, "Sakura", quote.Nights[1].SeasonName)
	assert.True(t, quote.Nights[1].Rate.Equal(yen(22000)), "friday %s", quote.Nights[1].Rate)
	assert.True(t, quote.Nights[2].Rate.Equal(yen(22000)), "saturday %s", quote.Nights[2].Rate)
	// Sunday is in season but not a weekend night.
	assert.Equal(t, "Sakura", quote.Nights[3].SeasonName)
	assert.True(t, quote.Nights[3].Rate.Equal(yen(20000)), "sunday %s", quote.Nights[3].Rate)
}

func TestQuoteFees(t *testing.T) {
	property := testProperty()
	property.CleaningFee = yen(5000)
	property.ServiceFeePercent = decimal.NewFromInt(10)
	property.ExtraGuestFee = yen(2000)

	quote, err := QuoteStay(QuoteInput{
		Property: property,
		Checkin:  night(2),
		Checkout: night(4),
		Adults:   2,
		Children: 1,
	})
	require.NoError(t, err)

	// One guest above the included two, two nights.
	assert.True(t, quote.ExtraGuestFee.Equal(yen(4000)), "extra %s", quote.ExtraGuestFee)
	assert.True(t, quote.CleaningFee.Equal(yen(5000)))
	// Service fee on nights + extra guest fee: 10% of 24000.
	assert.True(t, quote.ServiceFee.Equal(yen(2400)), "service %s", quote.ServiceFee)
	assert.True(t, quote.Total.Equal(yen(31400)), "total %s", quote.Total)
}

func TestQuoteWeeklyDiscount(t *testing.T) {
	quote, err := QuoteStay(QuoteInput{
		Property: testProperty(),
		Checkin:  night(2),
		Checkout: night(9),
		Adults:   2,
	})
	require.NoError(t, err)

	require.Len(t, quote.Nights, 7)
	assert.True(t, quote.DiscountPercent.Equal(decimal.NewFromInt(5)))
	assert.True(t, quote.Discount.Equal(yen(3500)), "discount %s", quote.Discount)
	assert.True(t, quote.Total.Equal(yen(66500)), "total %s", quote.Total)
}

func TestQuoteMonthlyDiscount(t *testing.T) {
	quote, err := QuoteStay(QuoteInput{
		Property: testProperty(),
		Checkin:  night(1),
		Checkout: night(29),
		Adults:   2,
	})
	require.NoError(t, err)

	require.Len(t, quote.Nights, 28)
	assert.True(t, quote.DiscountPercent.Equal(decimal.NewFromInt(15)))
}

func TestQuoteRoundsToWholeYen(t *testing.T) {
	property := testProperty()
	property.ServiceFeePercent = decimal.NewFromFloat(7.5)

	quote, err := QuoteStay(QuoteInput{
		Property: property,
		Checkin:  night(2),
		Checkout: night(3),
		Adults:   2,
	})
	require.NoError(t, err)

	// 7.5% of 10000 is 750; whole-yen amounts stay whole.
	assert.True(t, quote.ServiceFee.Equal(yen(750)))
	assert.Equal(t, "10750", quote.Total.String())
}

func TestQuoteValidation(t *testing.T) {
	property := testProperty()

	_, err := QuoteStay(QuoteInput{Property: nil, Checkin: night(2), Checkout: night(4)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = QuoteStay(QuoteInput{Property: property, Checkout: night(4)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = QuoteStay(QuoteInput{Property: property, Checkin: night(4), Checkout: night(2)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = QuoteStay(QuoteInput{Property: property, Checkin: night(2), Checkout: night(4), Adults: 3, Children: 2})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQuoteDefaultsGuests(t *testing.T) {
	quote, err := QuoteStay(QuoteInput{
		Property: testProperty(),
		Checkin:  night(2),
		Checkout: night(3),
		Adults:   0,
	})
	require.NoError(t, err)
	assert.True(t, quote.ExtraGuestFee.IsZero())
	assert.True(t, quote.Total.Equal(yen(10000)))
}
