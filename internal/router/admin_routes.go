package router

import (
	"github.com/labstack/echo/v4"

	"github.com/afisha/theater-booking/internal/handler"
	"github.com/afisha/theater-booking/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// Order status machine; crossing the cancelled boundary moves
	// seats in or out of inventory.
	g.POST("/orders/:id/status", a.UpdateOrderStatus)

	// Moderation and catalog maintenance.
	g.DELETE("/reviews/:id", a.DeleteReview)
	g.DELETE("/schedules/:id", a.DeleteSchedule)
}
