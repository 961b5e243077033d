package enums

import "fmt"

// LedgerEventKind classifies entries in the booking audit ledger.
type LedgerEventKind string

const (
	LedgerEventReserve    LedgerEventKind = "reserve"
	LedgerEventConfirm    LedgerEventKind = "confirm"
	LedgerEventCancel     LedgerEventKind = "cancel"
	LedgerEventComplete   LedgerEventKind = "complete"
	LedgerEventRefund     LedgerEventKind = "refund"
	LedgerEventPayment    LedgerEventKind = "payment"
	LedgerEventAdjustment LedgerEventKind = "adjustment"
	LedgerEventNote       LedgerEventKind = "note"
)

var validLedgerEventKinds = []LedgerEventKind{
	LedgerEventReserve,
	LedgerEventConfirm,
	LedgerEventCancel,
	LedgerEventComplete,
	LedgerEventRefund,
	LedgerEventPayment,
	LedgerEventAdjustment,
	LedgerEventNote,
}

var ledgerEventKindLabels = map[LedgerEventKind]string{
	LedgerEventReserve:    "Reserved",
	LedgerEventConfirm:    "Confirmed",
	LedgerEventCancel:     "Cancelled",
	LedgerEventComplete:   "Completed",
	LedgerEventRefund:     "Refunded",
	LedgerEventPayment:    "Payment",
	LedgerEventAdjustment: "Adjustment",
	LedgerEventNote:       "Note",
}

// ValidLedgerEventKinds returns every recognized ledger event kind.
func ValidLedgerEventKinds() []LedgerEventKind {
	kinds := make([]LedgerEventKind, len(validLedgerEventKinds))
	copy(kinds, validLedgerEventKinds)
	return kinds
}

// String implements fmt.Stringer.
func (k LedgerEventKind) String() string {
	return string(k)
}

// IsValid reports whether the value matches a recognized ledger event kind.
func (k LedgerEventKind) IsValid() bool {
	for _, candidate := range validLedgerEventKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Label returns the display label for the event kind.
func (k LedgerEventKind) Label() string {
	if label, ok := ledgerEventKindLabels[k]; ok {
		return label
	}
	return string(k)
}

// ParseLedgerEventKind converts raw input into a LedgerEventKind.
func ParseLedgerEventKind(value string) (LedgerEventKind, error) {
	for _, candidate := range validLedgerEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event kind %q", value)
}
