package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

func seedEntry(s *Store, seats uint32) *model.ScheduleEntry {
	return s.PutEntry(&model.ScheduleEntry{
		PerformanceID:  1,
		AvailableSeats: seats,
		Price:          decimal.RequireFromString("1000.00"),
	})
}

func TestReserveFailureLeavesCountUnchanged(t *testing.T) {
	s := New()
	entry := seedEntry(s, 3)
	ctx := context.Background()

	ok, err := s.Reserve(ctx, entry.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint32(3), s.Seats(entry.ID))

	ok, err = s.Reserve(ctx, entry.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), s.Seats(entry.ID))

	_, err = s.Reserve(ctx, 999, 1)
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestReserveConcurrentNeverOversells(t *testing.T) {
	s := New()
	entry := seedEntry(s, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]bool, 80)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.Reserve(ctx, entry.ID, 1)
			require.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	granted := 0
	for _, ok := range results {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 50, granted)
	assert.Equal(t, uint32(0), s.Seats(entry.ID))
}

func TestReleaseRestoresSeats(t *testing.T) {
	s := New()
	entry := seedEntry(s, 10)
	ctx := context.Background()

	ok, err := s.Reserve(ctx, entry.ID, 4)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, entry.ID, 4))
	assert.Equal(t, uint32(10), s.Seats(entry.ID))

	require.ErrorIs(t, s.Release(ctx, 999, 1), booking.ErrNotFound)
}

func TestSaveLineUniquePerUserAndEntry(t *testing.T) {
	s := New()
	entry := seedEntry(s, 10)
	ctx := context.Background()

	first := &model.CartItem{UserID: 7, EntryID: entry.ID, Quantity: 2}
	require.NoError(t, s.SaveLine(ctx, first))
	require.NotZero(t, first.ID)

	// Same (user, entry) pair replaces the line instead of adding one.
	second := &model.CartItem{UserID: 7, EntryID: entry.ID, Quantity: 5}
	require.NoError(t, s.SaveLine(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	lines, err := s.ListLines(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint32(5), lines[0].Quantity)

	// A different user gets their own line for the same entry.
	other := &model.CartItem{UserID: 8, EntryID: entry.ID, Quantity: 1}
	require.NoError(t, s.SaveLine(ctx, other))
	assert.NotEqual(t, first.ID, other.ID)
}

func TestListLinesOrderAndIsolation(t *testing.T) {
	s := New()
	a := seedEntry(s, 10)
	b := seedEntry(s, 10)
	c := seedEntry(s, 10)
	ctx := context.Background()

	for _, entryID := range []uint64{c.ID, a.ID, b.ID} {
		require.NoError(t, s.SaveLine(ctx, &model.CartItem{UserID: 7, EntryID: entryID, Quantity: 1}))
	}
	require.NoError(t, s.SaveLine(ctx, &model.CartItem{UserID: 8, EntryID: a.ID, Quantity: 1}))

	lines, err := s.ListLines(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID},
		[]uint64{lines[0].EntryID, lines[1].EntryID, lines[2].EntryID})
	for _, line := range lines {
		require.NotNil(t, line.Entry)
	}

	// Mutating a returned line's entry must not leak into the store.
	lines[0].Entry.AvailableSeats = 0
	assert.Equal(t, uint32(10), s.Seats(a.ID))
}

func TestClearUserRemovesOnlyThatUser(t *testing.T) {
	s := New()
	entry := seedEntry(s, 10)
	ctx := context.Background()

	require.NoError(t, s.SaveLine(ctx, &model.CartItem{UserID: 7, EntryID: entry.ID, Quantity: 1}))
	require.NoError(t, s.SaveLine(ctx, &model.CartItem{UserID: 8, EntryID: entry.ID, Quantity: 2}))

	require.NoError(t, s.ClearUser(ctx, 7))

	mine, err := s.ListLines(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, mine)
	theirs, err := s.ListLines(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestOrderRoundTrip(t *testing.T) {
	s := New()
	entry := seedEntry(s, 10)
	ctx := context.Background()

	order := &model.Order{
		UserID:        7,
		Status:        model.OrderPending,
		TotalAmount:   decimal.RequireFromString("2000.00"),
		CustomerName:  "Anna Petrova",
		CustomerEmail: "anna@example.com",
		Items: []model.OrderItem{
			{EntryID: entry.ID, Quantity: 2, PricePerUnit: decimal.RequireFromString("1000.00")},
		},
	}
	require.NoError(t, s.CreateOrder(ctx, order))
	require.NotZero(t, order.ID)
	require.NotZero(t, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Entry)

	require.NoError(t, s.SetStatus(ctx, order.ID, model.OrderConfirmed))
	got, err = s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, got.Status)

	require.NoError(t, s.DeleteOrder(ctx, order.ID))
	_, err = s.GetOrder(ctx, order.ID)
	require.ErrorIs(t, err, booking.ErrNotFound)
}
