package enums

import "testing"

func TestLedgerEventKindIsValid(t *testing.T) {
	if got := len(ValidLedgerEventKinds()); got != 8 {
		t.Fatalf("expected 8 ledger event kinds, got %d", got)
	}
	for _, kind := range ValidLedgerEventKinds() {
		if !kind.IsValid() {
			t.Fatalf("expected %s to be valid", kind)
		}
	}
	if LedgerEventKind("bogus_event").IsValid() {
		t.Fatal("unknown kind reported valid")
	}
}

func TestLedgerEventKindLabels(t *testing.T) {
	if got := LedgerEventPayment.Label(); got != "Payment" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := LedgerEventKind("strange").Label(); got != "strange" {
		t.Fatalf("unknown kinds should fall back to the raw value, got %q", got)
	}
}

func TestParseLedgerEventKind(t *testing.T) {
	kind, err := ParseLedgerEventKind("refund")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != LedgerEventRefund {
		t.Fatalf("expected refund, got %s", kind)
	}
	if _, err := ParseLedgerEventKind("chargeback"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestCurrencyDecimalPlaces(t *testing.T) {
	if CurrencyJPY.DecimalPlaces() != 0 {
		t.Fatal("JPY should have no minor unit")
	}
	if CurrencyUSD.DecimalPlaces() != 2 || CurrencyEUR.DecimalPlaces() != 2 {
		t.Fatal("expected 2 decimal places for USD/EUR")
	}
	if _, err := ParseCurrency("GBP"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}
