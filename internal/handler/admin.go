package handler

import (
	"errors"   // errors.Is for repository sentinels
	"net/http" // HTTP status codes
	"strings"  // normalizing the requested status
	"time"     // event timestamps

	"github.com/google/uuid"      // event IDs for published messages
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
	"github.com/afisha/theater-booking/internal/queue"
	"github.com/afisha/theater-booking/internal/repository"
	queuepub "github.com/afisha/theater-booking/internal/service"
)

// AdminHandler groups the administrative operations: the order status
// machine, schedule entry removal and review moderation. The router
// guards these routes with RequireRole("ADMIN").
type AdminHandler struct {
	Orders    *booking.OrderService
	Schedules *repository.ScheduleRepo
	Reviews   *repository.ReviewRepo
}

// NewAdminHandler constructs an AdminHandler. All dependencies must be
// non-nil.
func NewAdminHandler(orders *booking.OrderService, schedules *repository.ScheduleRepo, reviews *repository.ReviewRepo) *AdminHandler {
	if orders == nil || schedules == nil || reviews == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Orders: orders, Schedules: schedules, Reviews: reviews}
}

// UpdateOrderStatus handles POST /v1/admin/orders/:id/status. Moving
// an order into cancelled releases its seats; reopening a cancelled
// order re-reserves them and fails with 409 when inventory no longer
// covers the lines, leaving the order cancelled.
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status, ok := model.ParseOrderStatus(strings.ToLower(strings.TrimSpace(body.Status)))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	ctx := c.Request().Context()
	order, err := h.Orders.UpdateStatus(ctx, orderID, status, act)
	if err != nil {
		return bookingError(c, err)
	}
	if status == model.OrderCancelled {
		_ = queuepub.PublishOrderCancelled(ctx, queue.OrderCancelledEvent{
			EventID:     uuid.NewString(),
			OrderID:     order.ID,
			UserID:      order.UserID,
			Items:       eventItems(order),
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderPart(order)})
}

// DeleteSchedule handles DELETE /v1/admin/schedules/:id. Entries that
// appear in order history cannot be removed; the delete is refused
// with 409 instead.
func (h *AdminHandler) DeleteSchedule(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	err := h.Schedules.DeleteByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule entry is referenced by orders"})
	}
	if err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteReview handles DELETE /v1/admin/reviews/:id, the moderation
// path: any review can be removed regardless of author.
func (h *AdminHandler) DeleteReview(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	if err := h.Reviews.DeleteByID(c.Request().Context(), id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
