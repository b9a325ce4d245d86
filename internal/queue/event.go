// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published after an order has been created and
// its seats reserved. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type OrderCreatedEvent struct {
	EventID     string           `json:"event_id"`
	OrderID     uint64           `json:"order_id"`
	UserID      uint64           `json:"user_id"`
	TotalAmount string           `json:"total_amount"`
	Items       []OrderEventItem `json:"items"`
	CreatedAt   string           `json:"created_at"`
}

// OrderEventItem is one line of an order event: which showing and how
// many seats.
type OrderEventItem struct {
	ScheduleID  uint64 `json:"schedule_id"`
	Performance string `json:"performance"`
	Quantity    uint32 `json:"quantity"`
}

// OrderCancelledEvent is published after an order has been cancelled
// and its seats released back to inventory.
type OrderCancelledEvent struct {
	EventID     string           `json:"event_id"`
	OrderID     uint64           `json:"order_id"`
	UserID      uint64           `json:"user_id"`
	Items       []OrderEventItem `json:"items"`
	CancelledAt string           `json:"cancelled_at"`
}
