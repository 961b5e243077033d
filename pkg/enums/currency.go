package enums

import "fmt"

// Currency represents supported monetary denominations for ledger amounts.
type Currency string

const (
	CurrencyJPY Currency = "JPY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// DefaultCurrency is applied when a caller does not specify one.
const DefaultCurrency = CurrencyJPY

var validCurrencies = []Currency{
	CurrencyJPY,
	CurrencyUSD,
	CurrencyEUR,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// DecimalPlaces returns how many fractional digits amounts in this currency
// are displayed with. JPY has no minor unit.
func (c Currency) DecimalPlaces() int32 {
	if c == CurrencyJPY {
		return 0
	}
	return 2
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
