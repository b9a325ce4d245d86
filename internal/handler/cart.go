package handler

import (
	"net/http" // HTTP status codes
	"time"     // formatting timestamps

	"github.com/labstack/echo/v4"   // Echo web framework
	"github.com/shopspring/decimal" // money arithmetic for cart totals

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/model"
)

// CartHandler exposes the advisory cart. All routes sit behind JWT
// authentication; quantities are validated against availability by the
// cart service, never reserved here.
type CartHandler struct {
	Carts *booking.CartService
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(carts *booking.CartService) *CartHandler {
	if carts == nil {
		panic("nil service passed to NewCartHandler")
	}
	return &CartHandler{Carts: carts}
}

type cartLinePart struct {
	ID         uint64        `json:"id"`
	ScheduleID uint64        `json:"schedule_id"`
	Quantity   uint32        `json:"quantity"`
	AddedAt    string        `json:"added_at"`
	Total      string        `json:"total"`
	Schedule   *schedulePart `json:"schedule,omitempty"`
}

func toCartLinePart(line *model.CartItem) cartLinePart {
	p := cartLinePart{
		ID:         line.ID,
		ScheduleID: line.EntryID,
		Quantity:   line.Quantity,
		Total:      line.TotalPrice().StringFixed(2),
	}
	if !line.AddedAt.IsZero() {
		p.AddedAt = line.AddedAt.UTC().Format(time.RFC3339)
	}
	if line.Entry != nil {
		sp := toSchedulePart(line.Entry)
		p.Schedule = &sp
	}
	return p
}

// Get handles GET /v1/cart. It returns the user's lines plus a grand
// total computed from current entry prices.
func (h *CartHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lines, err := h.Carts.List(c.Request().Context(), userID)
	if err != nil {
		return bookingError(c, err)
	}
	items := make([]cartLinePart, 0, len(lines))
	total := decimal.Zero
	for i := range lines {
		items = append(items, toCartLinePart(&lines[i]))
		total = total.Add(lines[i].TotalPrice())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": total.StringFixed(2),
	})
}

// Add handles POST /v1/cart. Adding an entry already in the cart
// replaces the line's quantity.
func (h *CartHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ScheduleID uint64 `json:"schedule_id"`
		Quantity   uint32 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ScheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id is required"})
	}
	line, err := h.Carts.Add(c.Request().Context(), userID, body.ScheduleID, body.Quantity)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toCartLinePart(line)})
}

// SetQuantity handles POST /v1/cart/:id where :id is the cart line ID.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lineID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}
	var body struct {
		Quantity uint32 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	line, err := h.Carts.SetQuantity(c.Request().Context(), userID, lineID, body.Quantity)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toCartLinePart(line)})
}

// Remove handles DELETE /v1/cart/:id.
func (h *CartHandler) Remove(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lineID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}
	if err := h.Carts.Remove(c.Request().Context(), userID, lineID); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles POST /v1/cart/clear.
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Carts.Clear(c.Request().Context(), userID); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
