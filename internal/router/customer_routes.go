package router

import (
	"github.com/labstack/echo/v4"

	"github.com/afisha/theater-booking/internal/handler"
	"github.com/afisha/theater-booking/internal/middleware"
)

// RegisterCustomer registers the cart, order and review endpoints
// under /v1.  All routes require a valid JWT; admins may use them too
// (an admin buying tickets is still a customer of the system).
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, order *handler.OrderHandler, review *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)

	// ---- Cart ----
	g.GET("/cart", cart.Get)
	g.POST("/cart", cart.Add)
	g.POST("/cart/clear", cart.Clear)
	g.POST("/cart/:id", cart.SetQuantity)
	g.DELETE("/cart/:id", cart.Remove)

	// ---- Orders ----
	g.POST("/orders", order.Create)
	g.GET("/orders", order.List)
	g.GET("/orders/:id", order.Get)
	g.POST("/orders/:id/cancel", order.Cancel)

	// ---- Reviews ----
	g.POST("/performances/:id/reviews", review.Create)
	g.DELETE("/reviews/:id", review.Delete)
}
