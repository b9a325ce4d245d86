package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"   // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"  // redis client consumed by cache and rate limit middleware

	"github.com/afisha/theater-booking/internal/config"     // cache and rate limit configuration
	"github.com/afisha/theater-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/afisha/theater-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated catalog endpoints.  The
// routes sit behind the Redis token-bucket rate limiter and the
// response cache; both middlewares degrade to pass-through when rdb is
// nil, so a missing Redis connection never takes the catalog down.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	g.GET("/halls", cat.ListHalls)
	g.GET("/performances", cat.ListPerformances)
	g.GET("/performances/:id", cat.GetPerformance)
	g.GET("/performances/:id/schedules", cat.ListSchedules)
	g.GET("/performances/:id/reviews", cat.ListReviews)
	g.GET("/categories", cat.ListCategories)
	g.GET("/categories/:id/performances", cat.ListCategoryPerformances)
	g.GET("/search/performances", cat.SearchPerformances)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new
	// access token while reusing the existing refresh token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication.  The handler accepts a
	// JSON body containing a `refresh_token` or an Authorization header
	// and invalidates the matching session(s).
	g.POST("/logout", a.Logout)

	// Protected group: any authenticated role may query its own identity.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler so clients can
	// call either /v1/auth/logout or /v1/logout to terminate a session.
	e.POST("/v1/logout", a.Logout)
}
