package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
	"github.com/afisha/theater-booking/internal/repository/memstore"
)

func newEntry(store *memstore.Store, name string, seats uint32, price string) *model.ScheduleEntry {
	return store.PutEntry(&model.ScheduleEntry{
		PerformanceID:   1,
		TheaterID:       1,
		HallID:          1,
		DateTime:        time.Now().UTC().Add(48 * time.Hour),
		AvailableSeats:  seats,
		Price:           decimal.RequireFromString(price),
		PerformanceName: name,
	})
}

func TestCartAddNewLine(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := booking.NewCartService(store, store)

	line, err := svc.Add(context.Background(), 7, entry.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), line.Quantity)
	assert.Equal(t, "5000.00", line.TotalPrice().StringFixed(2))

	// The cart holds no reservation; availability is untouched.
	assert.Equal(t, uint32(50), store.Seats(entry.ID))
}

func TestCartAddZeroQuantity(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := booking.NewCartService(store, store)

	_, err := svc.Add(context.Background(), 7, entry.ID, 0)
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCartAddUnknownEntry(t *testing.T) {
	store := memstore.New()
	svc := booking.NewCartService(store, store)

	_, err := svc.Add(context.Background(), 7, 999, 1)
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCartAddBeyondAvailability(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 5, "2500.00")
	svc := booking.NewCartService(store, store)

	_, err := svc.Add(context.Background(), 7, entry.ID, 10)
	var seatsErr *booking.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, uint32(5), seatsErr.Available)
	assert.Equal(t, uint32(10), seatsErr.Requested)
	assert.Equal(t, "Hamlet", seatsErr.PerformanceName)
}

func TestCartAddReplacesExistingLine(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := booking.NewCartService(store, store)
	ctx := context.Background()

	first, err := svc.Add(ctx, 7, entry.ID, 3)
	require.NoError(t, err)

	// Adding the same entry again replaces the quantity, it does not
	// accumulate.
	second, err := svc.Add(ctx, 7, entry.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, uint32(2), second.Quantity)

	lines, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint32(2), lines[0].Quantity)
}

func TestCartAddIncreaseChecksDelta(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 4, "2500.00")
	svc := booking.NewCartService(store, store)
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, entry.ID, 3)
	require.NoError(t, err)

	// Raising 3 -> 6 needs 3 additional seats but only 4 exist in
	// total; the check is against the delta, so this passes.
	line, err := svc.Add(ctx, 7, entry.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), line.Quantity)

	// 6 -> 12 needs 6 more than the 4 available.
	_, err = svc.Add(ctx, 7, entry.ID, 12)
	var seatsErr *booking.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, uint32(6), seatsErr.Requested)
}

func TestCartSetQuantity(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := booking.NewCartService(store, store)
	ctx := context.Background()

	line, err := svc.Add(ctx, 7, entry.ID, 2)
	require.NoError(t, err)

	updated, err := svc.SetQuantity(ctx, 7, line.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), updated.Quantity)

	// Zero means remove, which is a different operation.
	_, err = svc.SetQuantity(ctx, 7, line.ID, 0)
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)

	// Another user's line is indistinguishable from a missing one.
	_, err = svc.SetQuantity(ctx, 8, line.ID, 1)
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCartRemoveAndClear(t *testing.T) {
	store := memstore.New()
	a := newEntry(store, "Hamlet", 50, "2500.00")
	b := newEntry(store, "Macbeth", 30, "1800.00")
	svc := booking.NewCartService(store, store)
	ctx := context.Background()

	lineA, err := svc.Add(ctx, 7, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, b.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, 7, lineA.ID))
	require.ErrorIs(t, svc.Remove(ctx, 7, lineA.ID), booking.ErrNotFound)

	lines, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, b.ID, lines[0].EntryID)

	require.NoError(t, svc.Clear(ctx, 7))
	lines, err = svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartListOrderedByEntryID(t *testing.T) {
	store := memstore.New()
	a := newEntry(store, "Hamlet", 50, "2500.00")
	b := newEntry(store, "Macbeth", 30, "1800.00")
	c := newEntry(store, "Othello", 20, "900.00")
	svc := booking.NewCartService(store, store)
	ctx := context.Background()

	for _, id := range []uint64{c.ID, a.ID, b.ID} {
		_, err := svc.Add(ctx, 7, id, 1)
		require.NoError(t, err)
	}

	lines, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID},
		[]uint64{lines[0].EntryID, lines[1].EntryID, lines[2].EntryID})
	for _, line := range lines {
		require.NotNil(t, line.Entry)
	}
}
