package booking_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
	"github.com/afisha/theater-booking/internal/repository/memstore"
)

var (
	minAmount = decimal.RequireFromString("500.00")
	maxAmount = decimal.RequireFromString("100000.00")
)

func newOrderService(store *memstore.Store) *booking.OrderService {
	return booking.NewOrderService(store, store, store, store, minAmount, maxAmount)
}

func validInfo() booking.CustomerInfo {
	return booking.CustomerInfo{Name: "Anna Petrova", Email: "anna@example.com", PaymentMethod: "card"}
}

func TestOrderCreate(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	carts := booking.NewCartService(store, store)
	svc := newOrderService(store)
	ctx := context.Background()

	_, err := carts.Add(ctx, 7, entry.ID, 2)
	require.NoError(t, err)

	order, err := svc.Create(ctx, 7, validInfo())
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "5000.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "2500.00", order.Items[0].PricePerUnit.StringFixed(2))
	assert.Equal(t, uint32(2), order.Items[0].Quantity)

	// Seats moved from available to reserved, and the cart is spent.
	assert.Equal(t, uint32(48), store.Seats(entry.ID))
	lines, err := carts.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// A second create hits the now-empty cart.
	_, err = svc.Create(ctx, 7, validInfo())
	require.ErrorIs(t, err, booking.ErrEmptyCart)
}

func TestOrderCreateRequiresContact(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	carts := booking.NewCartService(store, store)
	svc := newOrderService(store)
	ctx := context.Background()

	_, err := carts.Add(ctx, 7, entry.ID, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 7, booking.CustomerInfo{Name: "  ", Email: "anna@example.com"})
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestOrderCreateTotalBelowMinimum(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Matinee", 50, "400.00")
	carts := booking.NewCartService(store, store)
	svc := newOrderService(store)
	ctx := context.Background()

	_, err := carts.Add(ctx, 7, entry.ID, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 7, validInfo())
	var amountErr *booking.AmountOutOfRangeError
	require.ErrorAs(t, err, &amountErr)
	assert.Equal(t, "400.00", amountErr.Total.StringFixed(2))

	// Nothing was touched: seats intact, cart intact, no orders.
	assert.Equal(t, uint32(50), store.Seats(entry.ID))
	lines, err := carts.List(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	orders, err := svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderCreateInsufficientSeats(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 5, "2500.00")
	carts := booking.NewCartService(store, store)
	svc := newOrderService(store)
	ctx := context.Background()

	_, err := carts.Add(ctx, 7, entry.ID, 5)
	require.NoError(t, err)

	// Availability shrinks between adding to the cart and checkout.
	ok, err := store.Reserve(ctx, entry.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Create(ctx, 7, validInfo())
	var seatsErr *booking.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, uint32(2), seatsErr.Available)
	assert.Equal(t, uint32(5), seatsErr.Requested)

	// The pre-check failed before any reservation: counts unchanged.
	assert.Equal(t, uint32(2), store.Seats(entry.ID))
	orders, err := svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// raceLedger wraps the store ledger and steals seats from one entry
// right before its reservation, simulating a concurrent order landing
// between the pre-check and the reserve loop.
type raceLedger struct {
	*memstore.Store
	stealFrom uint64
	stealQty  uint32
	stolen    bool
}

func (l *raceLedger) Reserve(ctx context.Context, entryID uint64, qty uint32) (bool, error) {
	if !l.stolen && entryID == l.stealFrom {
		l.stolen = true
		if ok, err := l.Store.Reserve(ctx, entryID, l.stealQty); err != nil || !ok {
			return false, err
		}
	}
	return l.Store.Reserve(ctx, entryID, qty)
}

func TestOrderCreateRaceLostReleasesEverything(t *testing.T) {
	store := memstore.New()
	a := newEntry(store, "Hamlet", 10, "2500.00")
	b := newEntry(store, "Macbeth", 3, "2500.00")
	carts := booking.NewCartService(store, store)
	ledger := &raceLedger{Store: store, stealFrom: b.ID, stealQty: 2}
	svc := booking.NewOrderService(store, store, store, ledger, minAmount, maxAmount)
	ctx := context.Background()

	_, err := carts.Add(ctx, 7, a.ID, 2)
	require.NoError(t, err)
	_, err = carts.Add(ctx, 7, b.ID, 2)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 7, validInfo())
	require.ErrorIs(t, err, booking.ErrReservationRaceLost)

	// The first line's reservation was compensated, the second was
	// never taken; only the simulated concurrent order keeps seats.
	assert.Equal(t, uint32(10), store.Seats(a.ID))
	assert.Equal(t, uint32(1), store.Seats(b.ID))

	// The partially created order is gone and the cart survives for a
	// retry.
	orders, err := svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, orders)
	lines, err := carts.List(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func placeOrder(t *testing.T, store *memstore.Store, svc *booking.OrderService, userID, entryID uint64, qty uint32) *model.Order {
	t.Helper()
	carts := booking.NewCartService(store, store)
	_, err := carts.Add(context.Background(), userID, entryID, qty)
	require.NoError(t, err)
	order, err := svc.Create(context.Background(), userID, validInfo())
	require.NoError(t, err)
	return order
}

func TestOrderCancelReleasesOnce(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)
	ctx := context.Background()

	order := placeOrder(t, store, svc, 7, entry.ID, 2)
	require.Equal(t, uint32(48), store.Seats(entry.ID))

	released, err := svc.Cancel(ctx, order.ID, booking.Actor{ID: 7})
	require.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, uint32(50), store.Seats(entry.ID))

	// Cancelling again is a no-op, not a second release.
	released, err = svc.Cancel(ctx, order.ID, booking.Actor{ID: 7})
	require.NoError(t, err)
	assert.False(t, released)
	assert.Equal(t, uint32(50), store.Seats(entry.ID))
}

func TestOrderCancelPermissions(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)
	ctx := context.Background()

	order := placeOrder(t, store, svc, 7, entry.ID, 2)

	_, err := svc.Cancel(ctx, order.ID, booking.Actor{ID: 8})
	require.ErrorIs(t, err, booking.ErrPermissionDenied)

	// An admin may cancel anyone's order.
	released, err := svc.Cancel(ctx, order.ID, booking.Actor{ID: 1, Admin: true})
	require.NoError(t, err)
	assert.True(t, released)
}

func TestOrderGetOwnership(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)
	ctx := context.Background()

	order := placeOrder(t, store, svc, 7, entry.ID, 2)

	_, err := svc.Get(ctx, order.ID, booking.Actor{ID: 8})
	require.ErrorIs(t, err, booking.ErrPermissionDenied)

	got, err := svc.Get(ctx, order.ID, booking.Actor{ID: 8, Admin: true})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.Get(ctx, 999, booking.Actor{ID: 7})
	require.ErrorIs(t, err, booking.ErrNotFound)
}

func TestOrderUpdateStatusRequiresAdmin(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)

	order := placeOrder(t, store, svc, 7, entry.ID, 2)

	_, err := svc.UpdateStatus(context.Background(), order.ID, model.OrderConfirmed, booking.Actor{ID: 7})
	require.ErrorIs(t, err, booking.ErrPermissionDenied)
}

func TestOrderUpdateStatusTransitions(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)
	ctx := context.Background()
	admin := booking.Actor{ID: 1, Admin: true}

	order := placeOrder(t, store, svc, 7, entry.ID, 2)

	// Pending -> completed skips confirmation and is rejected.
	_, err := svc.UpdateStatus(ctx, order.ID, model.OrderCompleted, admin)
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)

	updated, err := svc.UpdateStatus(ctx, order.ID, model.OrderConfirmed, admin)
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, updated.Status)
	// A pure status write does not move seats.
	assert.Equal(t, uint32(48), store.Seats(entry.ID))

	updated, err = svc.UpdateStatus(ctx, order.ID, model.OrderCompleted, admin)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, updated.Status)

	// Completed is terminal.
	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderCancelled, admin)
	require.ErrorAs(t, err, &vErr)
}

func TestOrderUpdateStatusCancelledBoundary(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)
	ctx := context.Background()
	admin := booking.Actor{ID: 1, Admin: true}

	order := placeOrder(t, store, svc, 7, entry.ID, 2)
	require.Equal(t, uint32(48), store.Seats(entry.ID))

	// Into cancelled: seats come back.
	_, err := svc.UpdateStatus(ctx, order.ID, model.OrderCancelled, admin)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), store.Seats(entry.ID))

	// Reopening re-reserves.
	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderConfirmed, admin)
	require.NoError(t, err)
	assert.Equal(t, uint32(48), store.Seats(entry.ID))
}

func TestOrderReopenFailureRollsBack(t *testing.T) {
	store := memstore.New()
	a := newEntry(store, "Hamlet", 10, "2500.00")
	b := newEntry(store, "Macbeth", 10, "2500.00")
	carts := booking.NewCartService(store, store)
	svc := newOrderService(store)
	ctx := context.Background()
	admin := booking.Actor{ID: 1, Admin: true}

	_, err := carts.Add(ctx, 7, a.ID, 2)
	require.NoError(t, err)
	_, err = carts.Add(ctx, 7, b.ID, 2)
	require.NoError(t, err)
	order, err := svc.Create(ctx, 7, validInfo())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderCancelled, admin)
	require.NoError(t, err)
	require.Equal(t, uint32(10), store.Seats(a.ID))
	require.Equal(t, uint32(10), store.Seats(b.ID))

	// Someone else consumes nearly all of entry b while the order sits
	// cancelled.
	ok, err := store.Reserve(ctx, b.ID, 9)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderPending, admin)
	var seatsErr *booking.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, b.ID, seatsErr.EntryID)

	// The failed reopen left the ledger exactly as it found it and the
	// order stays cancelled.
	assert.Equal(t, uint32(10), store.Seats(a.ID))
	assert.Equal(t, uint32(1), store.Seats(b.ID))
	got, err := svc.Get(ctx, order.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, got.Status)
}

func TestOrderListNewestFirst(t *testing.T) {
	store := memstore.New()
	entry := newEntry(store, "Hamlet", 50, "2500.00")
	svc := newOrderService(store)
	ctx := context.Background()

	first := placeOrder(t, store, svc, 7, entry.ID, 1)
	second := placeOrder(t, store, svc, 7, entry.ID, 1)
	placeOrder(t, store, svc, 8, entry.ID, 1) // someone else's order

	orders, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}
