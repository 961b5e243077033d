package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minpaku-suite/minpaku-backend/internal/bookings"
	"github.com/minpaku-suite/minpaku-backend/pkg/config"
	pkgerrors "github.com/minpaku-suite/minpaku-backend/pkg/errors"
	"github.com/minpaku-suite/minpaku-backend/pkg/logger"
	"github.com/minpaku-suite/minpaku-backend/pkg/redis"
)

const (
	DayVacant   = "vacant"
	DayOccupied = "occupied"

	dayKeyFormat = "2006-01-02"
)

// OccupancyMap marks each day in a window as vacant or occupied. Keys are
// ISO dates; checkout days stay vacant because guests leave that morning.
type OccupancyMap map[string]string

// bookingFinder is the slice of the booking repository availability needs.
type bookingFinder interface {
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkin, checkout time.Time, excludeID *uuid.UUID) ([]*bookings.Booking, error)
}

// cacheStore is the cache surface availability relies on. A nil store
// degrades to direct repository queries.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Service answers occupancy questions for properties, caching computed
// windows in Redis. Invalidation bumps a per-property generation counter
// baked into every cache key, so stale windows simply stop being read.
type Service struct {
	repo  bookingFinder
	cache cacheStore
	ttl   time.Duration
	log   *logger.Logger
}

// NewService wires the availability service. The cache may be nil.
func NewService(repo bookingFinder, cache cacheStore, cfg config.AvailabilityConfig, log *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "availability service requires a booking repository")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}, nil
}

// Occupancy returns the day-by-day occupancy of a property over [from, to).
func (s *Service) Occupancy(ctx context.Context, propertyID uuid.UUID, from, to time.Time) (OccupancyMap, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "occupancy requires a property id")
	}
	from = truncateDay(from)
	to = truncateDay(to)
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "occupancy requires an ascending date window")
	}

	key := s.cacheKey(ctx, propertyID, from, to)
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	occupancy, err := s.compute(ctx, propertyID, from, to)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, key, occupancy)
	return occupancy, nil
}

// IsAvailable reports whether the property has no conflicting booking over
// [checkin, checkout). Invalid windows are simply unavailable.
func (s *Service) IsAvailable(ctx context.Context, propertyID uuid.UUID, checkin, checkout time.Time, excludeID *uuid.UUID) (bool, error) {
	checkin = truncateDay(checkin)
	checkout = truncateDay(checkout)
	if propertyID == uuid.Nil || checkin.IsZero() || checkout.IsZero() || !checkin.Before(checkout) {
		return false, nil
	}

	overlapping, err := s.repo.FindOverlapping(ctx, propertyID, checkin, checkout, excludeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query overlapping bookings")
	}
	return len(overlapping) == 0, nil
}

// InvalidateProperty drops every cached window for the property by bumping
// its generation counter.
func (s *Service) InvalidateProperty(ctx context.Context, propertyID uuid.UUID) error {
	if s.cache == nil || propertyID == uuid.Nil {
		return nil
	}
	if _, err := s.cache.Incr(ctx, generationKey(propertyID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump availability generation")
	}
	return nil
}

func (s *Service) compute(ctx context.Context, propertyID uuid.UUID, from, to time.Time) (OccupancyMap, error) {
	occupancy := make(OccupancyMap)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		occupancy[day.Format(dayKeyFormat)] = DayVacant
	}

	overlapping, err := s.repo.FindOverlapping(ctx, propertyID, from, to, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query overlapping bookings")
	}

	for _, booking := range overlapping {
		start := booking.Checkin()
		if start.Before(from) {
			start = from
		}
		end := booking.Checkout()
		if end.After(to) {
			end = to
		}
		for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
			occupancy[day.Format(dayKeyFormat)] = DayOccupied
		}
	}
	return occupancy, nil
}

func (s *Service) cacheKey(ctx context.Context, propertyID uuid.UUID, from, to time.Time) string {
	return redis.AvailabilityKey(
		propertyID.String(),
		fmt.Sprintf("g%d", s.generation(ctx, propertyID)),
		from.Format(dayKeyFormat),
		to.Format(dayKeyFormat),
	)
}

func (s *Service) generation(ctx context.Context, propertyID uuid.UUID) int64 {
	if s.cache == nil {
		return 0
	}
	raw, err := s.cache.Get(ctx, generationKey(propertyID))
	if err != nil {
		return 0
	}
	var gen int64
	if _, err := fmt.Sscanf(raw, "%d", &gen); err != nil {
		return 0
	}
	return gen
}

func (s *Service) readCache(ctx context.Context, key string) (OccupancyMap, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) && s.log != nil {
			s.log.Warn(s.log.WithField(ctx, "cache_key", key), "availability cache read failed")
		}
		return nil, false
	}
	var occupancy OccupancyMap
	if err := json.Unmarshal([]byte(raw), &occupancy); err != nil {
		return nil, false
	}
	return occupancy, true
}

func (s *Service) writeCache(ctx context.Context, key string, occupancy OccupancyMap) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(occupancy)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil && s.log != nil {
		s.log.Warn(s.log.WithField(ctx, "cache_key", key), "availability cache write failed")
	}
}

func generationKey(propertyID uuid.UUID) string {
	return redis.AvailabilityKey("gen", propertyID.String())
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
