package handler

import (
	"net/http" // HTTP status codes
	"strings"  // trimming review text
	"time"     // formatting timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/afisha/theater-booking/internal/model"
	"github.com/afisha/theater-booking/internal/repository"
)

// ReviewHandler lets authenticated customers write and remove their
// own reviews. Listing is public and lives on CatalogHandler.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews *repository.ReviewRepo) *ReviewHandler {
	if reviews == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews}
}

// Create handles POST /v1/performances/:id/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	perfID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}
	rev := &model.Review{UserID: userID, PerformanceID: perfID, Text: text}
	if err := h.Reviews.Create(c.Request().Context(), rev); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": echo.Map{
		"id":             rev.ID,
		"performance_id": rev.PerformanceID,
		"text":           rev.Text,
		"created_at":     rev.CreatedAt.UTC().Format(time.RFC3339),
	}})
}

// Delete handles DELETE /v1/reviews/:id. Customers may only remove
// their own reviews; moderation goes through the admin route.
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	if err := h.Reviews.DeleteByIDAndUser(c.Request().Context(), id, userID); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
