package availability

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minpaku-suite/minpaku-backend/internal/bookings"
	"github.com/minpaku-suite/minpaku-backend/pkg/config"
	"github.com/minpaku-suite/minpaku-backend/pkg/enums"
	"github.com/minpaku-suite/minpaku-backend/pkg/redis"
)

type fakeFinder struct {
	stays []*bookings.Booking
	calls int
}

func (f *fakeFinder) FindOverlapping(_ context.Context, propertyID uuid.UUID, checkin, checkout time.Time, excludeID *uuid.UUID) ([]*bookings.Booking, error) {
	f.calls++
	var found []*bookings.Booking
	for _, stay := range f.stays {
		if stay.PropertyID() != propertyID {
			continue
		}
		if excludeID != nil && stay.ID() == *excludeID {
			continue
		}
		if stay.State() == enums.BookingStateCancelled {
			continue
		}
		if stay.Checkin().Before(checkout) && stay.Checkout().After(checkin) {
			found = append(found, stay)
		}
	}
	return found, nil
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	value, ok := c.values[key]
	if !ok {
		return "", redis.ErrCacheMiss
	}
	return value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.values[key] = value.(string)
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(c.values[key], 10, 64)
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func confirmedStay(propertyID uuid.UUID, checkin, checkout time.Time) *bookings.Booking {
	stay := bookings.New(bookings.NewBookingInput{
		ID:         uuid.New(),
		PropertyID: propertyID,
		Checkin:    checkin,
		Checkout:   checkout,
		Adults:     2,
		State:      enums.BookingStateConfirmed,
	})
	return stay
}

func TestOccupancyMarksBookedDays(t *testing.T) {
	propertyID := uuid.New()
	finder := &fakeFinder{stays: []*bookings.Booking{
		confirmedStay(propertyID, day(3), day(5)),
	}}
	svc, err := NewService(finder, nil, config.AvailabilityConfig{}, nil)
	require.NoError(t, err)

	occupancy, err := svc.Occupancy(context.Background(), propertyID, day(1), day(7))
	require.NoError(t, err)
	require.Len(t, occupancy, 6)

	assert.Equal(t, DayVacant, occupancy["2026-08-01"])
	assert.Equal(t, DayVacant, occupancy["2026-08-02"])
	assert.Equal(t, DayOccupied, occupancy["2026-08-03"])
	assert.Equal(t, DayOccupied, occupancy["2026-08-04"])
	// Checkout day is vacant again.
	assert.Equal(t, DayVacant, occupancy["2026-08-05"])
	assert.Equal(t, DayVacant, occupancy["2026-08-06"])
}

func TestOccupancyClampsStayToWindow(t *testing.T) {
	propertyID := uuid.New()
	finder := &fakeFinder{stays: []*bookings.Booking{
		confirmedStay(propertyID, day(1), day(20)),
	}}
	svc, err := NewService(finder, nil, config.AvailabilityConfig{}, nil)
	require.NoError(t, err)

	occupancy, err := svc.Occupancy(context.Background(), propertyID, day(5), day(8))
	require.NoError(t, err)
	require.Len(t, occupancy, 3)
	for key, status := range occupancy {
		assert.Equal(t, DayOccupied, status, key)
	}
}

func TestOccupancyRejectsInvalidWindow(t *testing.T) {
	svc, err := NewService(&fakeFinder{}, nil, config.AvailabilityConfig{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Occupancy(ctx, uuid.Nil, day(1), day(5))
	assert.Error(t, err)

	_, err = svc.Occupancy(ctx, uuid.New(), day(5), day(1))
	assert.Error(t, err)

	_, err = svc.Occupancy(ctx, uuid.New(), day(5), day(5))
	assert.Error(t, err)
}

func TestOccupancyUsesCache(t *testing.T) {
	propertyID := uuid.New()
	finder := &fakeFinder{}
	cache := newFakeCache()
	svc, err := NewService(finder, cache, config.AvailabilityConfig{CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Occupancy(ctx, propertyID, day(1), day(5))
	require.NoError(t, err)
	_, err = svc.Occupancy(ctx, propertyID, day(1), day(5))
	require.NoError(t, err)
	assert.Equal(t, 1, finder.calls)
}

func TestInvalidatePropertyBustsCache(t *testing.T) {
	propertyID := uuid.New()
	finder := &fakeFinder{}
	cache := newFakeCache()
	svc, err := NewService(finder, cache, config.AvailabilityConfig{CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Occupancy(ctx, propertyID, day(1), day(5))
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateProperty(ctx, propertyID))
	_, err = svc.Occupancy(ctx, propertyID, day(1), day(5))
	require.NoError(t, err)

	// Generation bump forces a recompute under a fresh key.
	assert.Equal(t, 2, finder.calls)
}

func TestIsAvailable(t *testing.T) {
	propertyID := uuid.New()
	stay := confirmedStay(propertyID, day(3), day(7))
	finder := &fakeFinder{stays: []*bookings.Booking{stay}}
	svc, err := NewService(finder, nil, config.AvailabilityConfig{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	available, err := svc.IsAvailable(ctx, propertyID, day(5), day(9), nil)
	require.NoError(t, err)
	assert.False(t, available)

	// Back-to-back with the existing checkout.
	available, err = svc.IsAvailable(ctx, propertyID, day(7), day(9), nil)
	require.NoError(t, err)
	assert.True(t, available)

	// Excluding the conflicting booking itself.
	id := stay.ID()
	available, err = svc.IsAvailable(ctx, propertyID, day(4), day(6), &id)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableInvalidWindow(t *testing.T) {
	svc, err := NewService(&fakeFinder{}, nil, config.AvailabilityConfig{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	available, err := svc.IsAvailable(ctx, uuid.New(), day(5), day(5), nil)
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.IsAvailable(ctx, uuid.New(), time.Time{}, day(5), nil)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestNilCacheDegradesToDirectQueries(t *testing.T) {
	propertyID := uuid.New()
	finder := &fakeFinder{}
	svc, err := NewService(finder, nil, config.AvailabilityConfig{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Occupancy(ctx, propertyID, day(1), day(3))
	require.NoError(t, err)
	_, err = svc.Occupancy(ctx, propertyID, day(1), day(3))
	require.NoError(t, err)
	assert.Equal(t, 2, finder.calls)

	require.NoError(t, svc.InvalidateProperty(ctx, propertyID))
}
