package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
)

const displayDateFormat = "2006-01-02 15:04"

// FormatAmount renders an amount for display with thousands separators and
// the currency code, honouring the currency's decimal places. Yen amounts
// carry no fractional part.
func FormatAmount(amount decimal.Decimal, currency enums.Currency) string {
	fixed := amount.StringFixed(currency.DecimalPlaces())

	intPart := fixed
	fracPart := ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		intPart = fixed[:idx]
		fracPart = fixed[idx:]
	}

	return groupDigits(intPart) + fracPart + " " + currency.String()
}

// FormatDate renders a timestamp for display alongside ledger entries.
func FormatDate(t time.Time) string {
	return t.Format(displayDateFormat)
}

func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
