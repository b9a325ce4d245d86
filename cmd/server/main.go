package main // Entry point package

import (
	"context"
	"log"  // Logging library
	"time" // timeout for startup maintenance

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/afisha/theater-booking/internal/booking"
	"github.com/afisha/theater-booking/internal/config"
	"github.com/afisha/theater-booking/internal/database"
	"github.com/afisha/theater-booking/internal/handler"
	"github.com/afisha/theater-booking/internal/queue"
	"github.com/afisha/theater-booking/internal/repository"
	"github.com/afisha/theater-booking/internal/router"
)

func main() {
	// Load .env when present; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(database.Config{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	halls := repository.NewHallRepo(db)
	performances := repository.NewPerformanceRepo(db)
	schedules := repository.NewScheduleRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	reviews := repository.NewReviewRepo(db)
	ledger := repository.NewSeatLedger(db)

	// Drop long-expired refresh tokens on boot.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := tokens.PurgeExpired(ctx); err != nil {
			log.Printf("refresh token purge failed: %v", err)
		}
		cancel()
	}

	// Core services.
	cartSvc := booking.NewCartService(carts, schedules)
	orderSvc := booking.NewOrderService(orders, carts, schedules, ledger, cfg.OrderMinAmount, cfg.OrderMaxAmount)

	// Background consumer writes order events to logs/orders.log.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewCatalogHandler(performances, schedules, halls, reviews), rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterCustomer(e,
		handler.NewCartHandler(cartSvc),
		handler.NewOrderHandler(orderSvc),
		handler.NewReviewHandler(reviews),
		cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(orderSvc, schedules, reviews), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
