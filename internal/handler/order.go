package handler

import (
	"net/http" // HTTP status codes
	"time"     // formatting timestamps

	"github.com/google/uuid"      // event IDs for published messages
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
	"github.com/afisha/theater-booking/internal/queue"
	queuepub "github.com/afisha/theater-booking/internal/service"
)

// OrderHandler exposes the customer order lifecycle: checkout from the
// cart, listing, detail and cancellation. Domain events are published
// best-effort after the state change commits; a broker outage never
// fails the request.
type OrderHandler struct {
	Orders *booking.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *booking.OrderService) *OrderHandler {
	if orders == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

type orderItemPart struct {
	ID           uint64        `json:"id"`
	ScheduleID   uint64        `json:"schedule_id"`
	Quantity     uint32        `json:"quantity"`
	PricePerUnit string        `json:"price_per_unit"`
	Subtotal     string        `json:"subtotal"`
	Schedule     *schedulePart `json:"schedule,omitempty"`
}

type orderPart struct {
	ID              uint64          `json:"id"`
	Status          string          `json:"status"`
	TotalAmount     string          `json:"total_amount"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   *string         `json:"customer_phone,omitempty"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryAddress *string         `json:"delivery_address,omitempty"`
	CreatedAt       string          `json:"created_at"`
	Items           []orderItemPart `json:"items"`
}

func toOrderPart(o *model.Order) orderPart {
	p := orderPart{
		ID:              o.ID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		PaymentMethod:   o.PaymentMethod,
		DeliveryAddress: o.DeliveryAddress,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
		Items:           make([]orderItemPart, 0, len(o.Items)),
	}
	for i := range o.Items {
		it := &o.Items[i]
		part := orderItemPart{
			ID:           it.ID,
			ScheduleID:   it.EntryID,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit.StringFixed(2),
			Subtotal:     it.Subtotal().StringFixed(2),
		}
		if it.Entry != nil {
			sp := toSchedulePart(it.Entry)
			part.Schedule = &sp
		}
		p.Items = append(p.Items, part)
	}
	return p
}

func eventItems(o *model.Order) []queue.OrderEventItem {
	items := make([]queue.OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		ev := queue.OrderEventItem{ScheduleID: it.EntryID, Quantity: it.Quantity}
		if it.Entry != nil {
			ev.Performance = it.Entry.PerformanceName
		}
		items = append(items, ev)
	}
	return items
}

// Create handles POST /v1/orders. The body carries the customer
// contact fields; the lines come from the user's cart.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CustomerName    string  `json:"customer_name"`
		CustomerEmail   string  `json:"customer_email"`
		CustomerPhone   *string `json:"customer_phone"`
		PaymentMethod   string  `json:"payment_method"`
		DeliveryAddress *string `json:"delivery_address"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	order, err := h.Orders.Create(ctx, userID, booking.CustomerInfo{
		Name:            body.CustomerName,
		Email:           body.CustomerEmail,
		Phone:           body.CustomerPhone,
		PaymentMethod:   body.PaymentMethod,
		DeliveryAddress: body.DeliveryAddress,
	})
	if err != nil {
		return bookingError(c, err)
	}

	// Best-effort event; the publisher logs its own failures.
	_ = queuepub.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
		EventID:     uuid.NewString(),
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Items:       eventItems(order),
		CreatedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"item": toOrderPart(order)})
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.List(c.Request().Context(), userID)
	if err != nil {
		return bookingError(c, err)
	}
	items := make([]orderPart, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderPart(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, err := h.Orders.Get(c.Request().Context(), orderID, act)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderPart(order)})
}

// Cancel handles POST /v1/orders/:id/cancel. Completed orders are
// refused here: the tickets were used, there is nothing to give back.
// Cancelling an already cancelled order is a no-op reported as such.
func (h *OrderHandler) Cancel(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	order, err := h.Orders.Get(ctx, orderID, act)
	if err != nil {
		return bookingError(c, err)
	}
	if order.Status == model.OrderCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "completed orders cannot be cancelled"})
	}
	released, err := h.Orders.Cancel(ctx, orderID, act)
	if err != nil {
		return bookingError(c, err)
	}
	if released {
		_ = queuepub.PublishOrderCancelled(ctx, queue.OrderCancelledEvent{
			EventID:     uuid.NewString(),
			OrderID:     order.ID,
			UserID:      order.UserID,
			Items:       eventItems(order),
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       orderID,
		"status":   string(model.OrderCancelled),
		"released": released,
	})
}
