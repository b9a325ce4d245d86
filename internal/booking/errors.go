// Package booking implements the seat-inventory reservation core: the
// seat ledger contract, the advisory cart and the order lifecycle.
// Services in this package hold the business rules and talk to storage
// through small store interfaces, so the same logic runs against the
// MySQL repositories in production and the in-memory stores in tests.
package booking

import (
    "errors"
    "fmt"

    "github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced user, schedule entry, cart
// line or order does not exist.  Store implementations must map their
// own absence signals (e.g. sql.ErrNoRows) to this sentinel.
var ErrNotFound = errors.New("not found")

// ErrEmptyCart is returned by order creation when the user's cart holds
// no lines.  A retried create after a successful checkout hits this,
// which is the intended signal that the cart was already consumed.
var ErrEmptyCart = errors.New("cart is empty")

// ErrPermissionDenied is returned when the acting user may not touch
// the resource: reading someone else's order, or a non-administrator
// attempting a status update.
var ErrPermissionDenied = errors.New("permission denied")

// ErrReservationRaceLost is returned when the reserve loop of order
// creation loses a race: availability was sufficient at the pre-check
// but a concurrent order consumed the seats before this one could.
// All seats reserved by the losing call have been released again and
// the partially created order removed.
var ErrReservationRaceLost = errors.New("reservation race lost")

// ValidationError reports malformed input: a non-positive quantity,
// missing contact fields, or a status transition outside the machine.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InsufficientSeatsError reports that a schedule entry cannot satisfy
// the requested seat count.  Available is the count at the moment of
// the check; Requested is what the caller asked for (for a quantity
// increase on an existing cart line it is the additional seats, not
// the full new quantity).
type InsufficientSeatsError struct {
    EntryID         uint64
    PerformanceName string
    Available       uint32
    Requested       uint32
}

func (e *InsufficientSeatsError) Error() string {
    if e.PerformanceName != "" {
        return fmt.Sprintf("not enough seats for %q: available %d, requested %d",
            e.PerformanceName, e.Available, e.Requested)
    }
    return fmt.Sprintf("not enough seats for entry %d: available %d, requested %d",
        e.EntryID, e.Available, e.Requested)
}

// AmountOutOfRangeError reports an order total outside the configured
// [Min, Max] bounds.
type AmountOutOfRangeError struct {
    Total decimal.Decimal
    Min   decimal.Decimal
    Max   decimal.Decimal
}

func (e *AmountOutOfRangeError) Error() string {
    return fmt.Sprintf("order total %s outside allowed range [%s, %s]",
        e.Total.StringFixed(2), e.Min.StringFixed(2), e.Max.StringFixed(2))
}
