package booking

import (
    "context"

    "github.com/afisha/theater-booking/internal/model"
)

// Ledger is the authoritative seat-count mutation service.  Reserve
// must be implemented as an atomic compare-and-decrement so that two
// concurrent calls against the same entry cannot both succeed when
// only one has sufficient seats.  Release increments unconditionally;
// the ledger itself enforces no upper bound.
type Ledger interface {
    // Reserve atomically checks available_seats >= qty and decrements
    // on success.  It returns false (and mutates nothing) when the
    // entry cannot cover the request, and ErrNotFound when the entry
    // does not exist.
    Reserve(ctx context.Context, entryID uint64, qty uint32) (bool, error)

    // Release returns qty seats to the entry.
    Release(ctx context.Context, entryID uint64, qty uint32) error
}

// ScheduleStore reads schedule entries for validation and pricing.
// The reservation core never writes entries directly; all seat-count
// mutation goes through the Ledger.
type ScheduleStore interface {
    GetEntry(ctx context.Context, id uint64) (*model.ScheduleEntry, error)
}

// CartStore persists advisory cart lines.  Implementations must keep
// the (user, entry) pair unique and populate Entry on every read.
type CartStore interface {
    // GetLine loads a single line and enforces ownership: a line that
    // exists but belongs to another user is reported as ErrNotFound.
    GetLine(ctx context.Context, userID, lineID uint64) (*model.CartItem, error)

    // FindLine looks a line up by its (user, entry) pair.
    FindLine(ctx context.Context, userID, entryID uint64) (*model.CartItem, error)

    // SaveLine inserts the line or, when a line with the same
    // (user, entry) pair exists, replaces its quantity.  The stored
    // line's ID is populated on insert.
    SaveLine(ctx context.Context, line *model.CartItem) error

    // DeleteLine removes one line unconditionally.
    DeleteLine(ctx context.Context, lineID uint64) error

    // ListLines returns the user's lines ordered by ascending entry ID.
    ListLines(ctx context.Context, userID uint64) ([]model.CartItem, error)

    // ClearUser removes every line the user owns.
    ClearUser(ctx context.Context, userID uint64) error
}

// OrderStore persists orders and their immutable items.
type OrderStore interface {
    // CreateOrder inserts the order and all its items, populating
    // generated IDs and timestamps on the passed struct.
    CreateOrder(ctx context.Context, o *model.Order) error

    // DeleteOrder removes an order and its items.  Only the create
    // rollback path uses this; committed orders are never deleted.
    DeleteOrder(ctx context.Context, orderID uint64) error

    // GetOrder loads an order with items and their entries populated.
    GetOrder(ctx context.Context, orderID uint64) (*model.Order, error)

    // ListOrders returns a user's orders, newest first, with items.
    ListOrders(ctx context.Context, userID uint64) ([]model.Order, error)

    // SetStatus writes a new lifecycle status.
    SetStatus(ctx context.Context, orderID uint64, status model.OrderStatus) error
}

// Actor identifies the caller of an operation for ownership and
// capability checks.  Admin corresponds to the ADMIN role established
// by the authentication boundary.
type Actor struct {
    ID    uint64
    Admin bool
}
