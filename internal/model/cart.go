package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// CartItem is an advisory intent to buy tickets for one schedule entry.
// A given (user, schedule entry) pair appears at most once; adding the
// same entry again replaces the stored quantity.  Cart items never
// subtract from AvailableSeats – seats are reserved only when the cart
// is turned into an order, so checkout has to re-validate availability.
//
// Fields:
//  ID       – primary key identifier.
//  UserID   – owner of the cart line.
//  EntryID  – schedule entry the tickets are for.
//  Quantity – requested ticket count, always positive.
//  AddedAt  – when the line was first created.
//  Entry    – the referenced schedule entry, populated by stores on read.
type CartItem struct {
    ID       uint64         // cart_items.id
    UserID   uint64         // cart_items.user_id
    EntryID  uint64         // cart_items.schedule_id
    Quantity uint32         // cart_items.quantity
    AddedAt  time.Time      // cart_items.added_at
    Entry    *ScheduleEntry // joined schedule entry, nil if not loaded
}

// TotalPrice returns quantity times the entry's current price.  The
// value is informational; the binding price is captured on the order
// item at checkout.
func (ci *CartItem) TotalPrice() decimal.Decimal {
    if ci.Entry == nil {
        return decimal.Zero
    }
    return ci.Entry.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
