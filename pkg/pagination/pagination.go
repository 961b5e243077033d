package pagination

import "strings"

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 200
)

const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Params holds limit/offset pagination inputs.
type Params struct {
	Limit  int
	Offset int
	Order  string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset clamps negative offsets to zero.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// NormalizeOrder maps raw input onto ASC/DESC, defaulting to DESC.
func NormalizeOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

// Normalize returns a copy of the params with all fields clamped.
func (p Params) Normalize() Params {
	return Params{
		Limit:  NormalizeLimit(p.Limit),
		Offset: NormalizeOffset(p.Offset),
		Order:  NormalizeOrder(p.Order),
	}
}
