package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
    OrderPending   OrderStatus = "pending"
    OrderConfirmed OrderStatus = "confirmed"
    OrderCancelled OrderStatus = "cancelled"
    OrderCompleted OrderStatus = "completed"
)

// ParseOrderStatus validates a raw status string from a request body.
func ParseOrderStatus(s string) (OrderStatus, bool) {
    switch OrderStatus(s) {
    case OrderPending, OrderConfirmed, OrderCancelled, OrderCompleted:
        return OrderStatus(s), true
    }
    return "", false
}

// ValidTransition reports whether an order may move from one status to
// another.  Pending goes to Confirmed or Cancelled; Confirmed goes to
// Completed or Cancelled; Completed is terminal.  Cancelled is terminal
// for customers, but an administrative status update may reopen a
// cancelled order back to Pending or Confirmed – that carve-out is part
// of this table, the caller only decides who is allowed to use it.
func ValidTransition(from, to OrderStatus) bool {
    if from == to {
        return false
    }
    switch from {
    case OrderPending:
        return to == OrderConfirmed || to == OrderCancelled
    case OrderConfirmed:
        return to == OrderCompleted || to == OrderCancelled
    case OrderCancelled:
        return to == OrderPending || to == OrderConfirmed
    }
    return false
}

// Order is a reservation-backed purchase created from a cart snapshot.
// TotalAmount is computed once at creation from the entry prices in
// effect at that instant and never recomputed afterwards.  Payment
// fields are opaque pass-through values for an external processor.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – customer who placed the order.
//  Status          – lifecycle state, see OrderStatus.
//  TotalAmount     – DECIMAL(10,2) sum of all item subtotals.
//  CustomerName    – contact name captured at checkout.
//  CustomerEmail   – contact email captured at checkout.
//  CustomerPhone   – optional contact phone.
//  PaymentMethod   – free-form payment method label.
//  PaymentID       – external payment reference, if any.
//  DeliveryAddress – optional ticket delivery address.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last status change timestamp.
type Order struct {
    ID              uint64          // orders.id
    UserID          uint64          // orders.user_id
    Status          OrderStatus     // orders.status
    TotalAmount     decimal.Decimal // orders.total_amount
    CustomerName    string          // orders.customer_name
    CustomerEmail   string          // orders.customer_email
    CustomerPhone   *string         // orders.customer_phone (nullable)
    PaymentMethod   string          // orders.payment_method
    PaymentID       *string         // orders.payment_id (nullable)
    DeliveryAddress *string         // orders.delivery_address (nullable)
    CreatedAt       time.Time       // orders.created_at
    UpdatedAt       time.Time       // orders.updated_at
    Items           []OrderItem     // order_items rows, populated on read
}

// OrderItem locks in quantity and price for one schedule entry at the
// moment the order was created.  Rows are immutable: later price
// changes on the schedule entry do not affect existing orders, and the
// referenced entry cannot be deleted while order history points at it.
type OrderItem struct {
    ID           uint64          // order_items.id
    OrderID      uint64          // order_items.order_id
    EntryID      uint64          // order_items.schedule_id
    Quantity     uint32          // order_items.quantity
    PricePerUnit decimal.Decimal // order_items.price_per_unit
    Entry        *ScheduleEntry  // joined schedule entry, nil if not loaded
}

// Subtotal is quantity times the captured per-unit price.
func (oi *OrderItem) Subtotal() decimal.Decimal {
    return oi.PricePerUnit.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
