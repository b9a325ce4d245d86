package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing query parameters
	"strings"  // trimming the search query
	"time"     // formatting schedule timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/afisha/theater-booking/internal/model"
	"github.com/afisha/theater-booking/internal/repository"
)

// CatalogHandler serves the public, read-only catalog: performances,
// categories, schedules, halls and reviews. No authentication is
// required; the router wraps these routes in the response cache and
// rate limit middleware instead.
type CatalogHandler struct {
	Performances *repository.PerformanceRepo
	Schedules    *repository.ScheduleRepo
	Halls        *repository.HallRepo
	Reviews      *repository.ReviewRepo
}

// NewCatalogHandler constructs a CatalogHandler. All dependencies must
// be non-nil.
func NewCatalogHandler(perf *repository.PerformanceRepo, sched *repository.ScheduleRepo, halls *repository.HallRepo, reviews *repository.ReviewRepo) *CatalogHandler {
	if perf == nil || sched == nil || halls == nil || reviews == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Performances: perf, Schedules: sched, Halls: halls, Reviews: reviews}
}

// ----- response shapes -----

type performancePart struct {
	ID          uint64  `json:"id"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DurationMin uint32  `json:"duration_min"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func toPerformancePart(p *model.Performance) performancePart {
	return performancePart{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		DurationMin: p.DurationMin,
		ImageURL:    p.ImageURL,
	}
}

type schedulePart struct {
	ID             uint64 `json:"id"`
	PerformanceID  uint64 `json:"performance_id"`
	Performance    string `json:"performance"`
	TheaterID      uint64 `json:"theater_id"`
	HallID         uint64 `json:"hall_id"`
	DateTime       string `json:"date_time"`
	AvailableSeats uint32 `json:"available_seats"`
	Price          string `json:"price"`
}

func toSchedulePart(e *model.ScheduleEntry) schedulePart {
	return schedulePart{
		ID:             e.ID,
		PerformanceID:  e.PerformanceID,
		Performance:    e.PerformanceName,
		TheaterID:      e.TheaterID,
		HallID:         e.HallID,
		DateTime:       e.DateTime.UTC().Format(time.RFC3339),
		AvailableSeats: e.AvailableSeats,
		Price:          e.Price.StringFixed(2),
	}
}

// ListPerformances handles GET /v1/performances.
func (h *CatalogHandler) ListPerformances(c echo.Context) error {
	perfs, err := h.Performances.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load performances"})
	}
	items := make([]performancePart, 0, len(perfs))
	for i := range perfs {
		items = append(items, toPerformancePart(&perfs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPerformance handles GET /v1/performances/:id.
func (h *CatalogHandler) GetPerformance(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	p, err := h.Performances.GetByID(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPerformancePart(p)})
}

// ListCategories handles GET /v1/categories. Each category carries the
// number of performances filed under it.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	cats, err := h.Performances.ListCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load categories"})
	}
	type categoryPart struct {
		ID               uint64  `json:"id"`
		Name             string  `json:"name"`
		Description      *string `json:"description,omitempty"`
		PerformanceCount uint32  `json:"performance_count"`
	}
	items := make([]categoryPart, 0, len(cats))
	for _, cat := range cats {
		items = append(items, categoryPart{
			ID:               cat.ID,
			Name:             cat.Name,
			Description:      cat.Description,
			PerformanceCount: cat.PerformanceCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListCategoryPerformances handles GET /v1/categories/:id/performances.
func (h *CatalogHandler) ListCategoryPerformances(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	perfs, err := h.Performances.ListByCategory(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	items := make([]performancePart, 0, len(perfs))
	for i := range perfs {
		items = append(items, toPerformancePart(&perfs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListSchedules handles GET /v1/performances/:id/schedules. Upcoming
// showings only, with live availability.
func (h *CatalogHandler) ListSchedules(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	// Confirm the performance exists so an unknown ID is a 404, not an
	// empty list.
	if _, err := h.Performances.GetByID(c.Request().Context(), id); err != nil {
		return bookingError(c, err)
	}
	entries, err := h.Schedules.ListByPerformance(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedules"})
	}
	items := make([]schedulePart, 0, len(entries))
	for i := range entries {
		items = append(items, toSchedulePart(&entries[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SearchPerformances handles GET /v1/search/performances?q=.
func (h *CatalogHandler) SearchPerformances(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	perfs, err := h.Performances.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	items := make([]performancePart, 0, len(perfs))
	for i := range perfs {
		items = append(items, toPerformancePart(&perfs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "query": q})
}

// ListHalls handles GET /v1/halls?theater_id=.
func (h *CatalogHandler) ListHalls(c echo.Context) error {
	theaterID, err := strconv.ParseUint(c.QueryParam("theater_id"), 10, 64)
	if err != nil || theaterID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "theater_id is required"})
	}
	halls, err := h.Halls.ListByTheater(c.Request().Context(), theaterID)
	if err != nil {
		return bookingError(c, err)
	}
	type hallPart struct {
		ID         uint64 `json:"id"`
		NumberHall uint32 `json:"number_hall"`
		Capacity   uint32 `json:"capacity"`
	}
	items := make([]hallPart, 0, len(halls))
	for _, hall := range halls {
		items = append(items, hallPart{ID: hall.ID, NumberHall: hall.NumberHall, Capacity: hall.AvailableSeats})
	}
	return c.JSON(http.StatusOK, echo.Map{"theater_id": theaterID, "items": items})
}

// ListReviews handles GET /v1/performances/:id/reviews.
func (h *CatalogHandler) ListReviews(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	if _, err := h.Performances.GetByID(c.Request().Context(), id); err != nil {
		return bookingError(c, err)
	}
	reviews, err := h.Reviews.ListByPerformance(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reviews"})
	}
	type reviewPart struct {
		ID        uint64 `json:"id"`
		UserID    uint64 `json:"user_id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	}
	items := make([]reviewPart, 0, len(reviews))
	for _, rev := range reviews {
		items = append(items, reviewPart{
			ID:        rev.ID,
			UserID:    rev.UserID,
			Text:      rev.Text,
			CreatedAt: rev.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
