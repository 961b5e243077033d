package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit should fall back to default, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit should fall back to default, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 1); got != MaxLimit {
		t.Fatalf("limit should be capped at %d, got %d", MaxLimit, got)
	}
	if got := NormalizeLimit(25); got != 25 {
		t.Fatalf("valid limit should pass through, got %d", got)
	}
}

func TestNormalizeOrder(t *testing.T) {
	if got := NormalizeOrder("asc"); got != OrderAsc {
		t.Fatalf("expected ASC, got %q", got)
	}
	if got := NormalizeOrder(" ASC "); got != OrderAsc {
		t.Fatalf("expected trimmed ASC, got %q", got)
	}
	for _, raw := range []string{"", "desc", "sideways"} {
		if got := NormalizeOrder(raw); got != OrderDesc {
			t.Fatalf("input %q should default to DESC, got %q", raw, got)
		}
	}
}

func TestParamsNormalize(t *testing.T) {
	p := Params{Limit: -1, Offset: -10, Order: "asc"}.Normalize()
	if p.Limit != DefaultLimit || p.Offset != 0 || p.Order != OrderAsc {
		t.Fatalf("unexpected normalized params %+v", p)
	}
}
