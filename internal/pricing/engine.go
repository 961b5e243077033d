package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/minpaku-suite/minpaku-backend/pkg/db/models"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
)

var (
	hundred = decimal.NewFromInt(100)

	// Long stays earn a discount off the nightly subtotal.
	weeklyStayNights   = 7
	weeklyDiscountPct  = decimal.NewFromInt(5)
	monthlyStayNights  = 28
	monthlyDiscountPct = decimal.NewFromInt(15)
)

// NightCharge is the price of one night with the rate that produced it.
type NightCharge struct {
	Date       time.Time       `json:"date"`
	Rate       decimal.Decimal `json:"rate"`
	SeasonName string          `json:"season_name,omitempty"`
	Weekend    bool            `json:"weekend"`
}

// Quote is the full price breakdown for a prospective stay.
type Quote struct {
	Currency        enums.Currency  `json:"currency"`
	Nights          []NightCharge   `json:"nights"`
	NightsSubtotal  decimal.Decimal `json:"nights_subtotal"`
	ExtraGuestFee   decimal.Decimal `json:"extra_guest_fee"`
	CleaningFee     decimal.Decimal `json:"cleaning_fee"`
	ServiceFee      decimal.Decimal `json:"service_fee"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
}

// QuoteInput describes the stay being priced.
type QuoteInput struct {
	Property *models.Property
	Checkin  time.Time
	Checkout time.Time
	Adults   int
	Children int
}

// QuoteStay prices a stay night by night: seasonal overrides beat the base
// rate, weekend markup applies on top of whichever rate won, then fees and
// long-stay discounts fold into the total. Yen totals round to whole yen,
// other currencies to cents.
func QuoteStay(input QuoteInput) (*Quote, error) {
	property := input.Property
	if property == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote requires a property")
	}

	checkin := truncateDay(input.Checkin)
	checkout := truncateDay(input.Checkout)
	if checkin.IsZero() || checkout.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote requires checkin and checkout dates")
	}
	if !checkin.Before(checkout) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkin must be before checkout")
	}

	adults := input.Adults
	if adults < 1 {
		adults = 1
	}
	children := input.Children
	if children < 0 {
		children = 0
	}
	guests := adults + children
	if property.MaxGuests > 0 && guests > property.MaxGuests {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest count exceeds property capacity").
			WithDetails(map[string]any{"guests": guests, "max_guests": property.MaxGuests})
	}

	currency := property.Currency
	if !currency.IsValid() {
		currency = enums.DefaultCurrency
	}
	places := currency.DecimalPlaces()

	quote := &Quote{Currency: currency}
	for day := checkin; day.Before(checkout); day = day.AddDate(0, 0, 1) {
		charge := nightCharge(property, day)
		charge.Rate = charge.Rate.Round(places)
		quote.Nights = append(quote.Nights, charge)
		quote.NightsSubtotal = quote.NightsSubtotal.Add(charge.Rate)
	}

	nightCount := len(quote.Nights)
	if extra := guests - property.IncludedGuests; extra > 0 && property.ExtraGuestFee.IsPositive() {
		quote.ExtraGuestFee = property.ExtraGuestFee.
			Mul(decimal.NewFromInt(int64(extra))).
			Mul(decimal.NewFromInt(int64(nightCount))).
			Round(places)
	}

	quote.DiscountPercent = discountPercent(nightCount)
	if quote.DiscountPercent.IsPositive() {
		quote.Discount = quote.NightsSubtotal.
			Mul(quote.DiscountPercent).
			Div(hundred).
			Round(places)
	}

	quote.CleaningFee = property.CleaningFee.Round(places)

	feeBase := quote.NightsSubtotal.
		Add(quote.ExtraGuestFee).
		Sub(quote.Discount)
	if property.ServiceFeePercent.IsPositive() {
		quote.ServiceFee = feeBase.
			Mul(property.ServiceFeePercent).
			Div(hundred).
			Round(places)
	}

	quote.Total = feeBase.
		Add(quote.CleaningFee).
		Add(quote.ServiceFee).
		Round(places)
	return quote, nil
}

func nightCharge(property *models.Property, day time.Time) NightCharge {
	charge := NightCharge{
		Date: day,
		Rate: property.BaseNightlyRate,
	}

	for _, season := range property.SeasonRates {
		if inSeason(day, season) {
			charge.Rate = season.NightlyRate
			charge.SeasonName = season.Name
			break
		}
	}

	if isWeekend(day) {
		charge.Weekend = true
		if property.WeekendMarkupPercent.IsPositive() {
			markup := charge.Rate.Mul(property.WeekendMarkupPercent).Div(hundred)
			charge.Rate = charge.Rate.Add(markup)
		}
	}
	return charge
}

func discountPercent(nights int) decimal.Decimal {
	switch {
	case nights >= monthlyStayNights:
		return monthlyDiscountPct
	case nights >= weeklyStayNights:
		return weeklyDiscountPct
	default:
		return decimal.Zero
	}
}

func inSeason(day time.Time, season models.SeasonRate) bool {
	start := truncateDay(season.Start)
	end := truncateDay(season.End)
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !day.Before(start) && !day.After(end)
}

// Friday and Saturday nights carry the weekend markup.
func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
