package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventbooking/config"
	_ "eventbooking/docs"
	"eventbooking/internal/adapters/auth"
	"eventbooking/internal/adapters/cache"
	"eventbooking/internal/clock"
	httpdelivery "eventbooking/internal/delivery/http"
	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
	"eventbooking/internal/repository/postgres"
	"eventbooking/internal/services"
	"eventbooking/migrations"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	bookingRPS      = 5
	bookingBurst    = 10
)

// @title Event Booking API
// @version 1.0
// @description Event listing and ticket booking service with atomic inventory handling.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	var eventCache domain.EventCache
	if cfg.RedisURL != "" {
		eventCache, err = cache.NewRedisEventCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		logger.Info("event cache enabled")
	}

	clk := clock.NewSystem()
	hasher := auth.NewBcryptHasher(0)
	issuer, verifier := auth.NewJWT(cfg.JWTSecret)

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	authSvc := services.NewAuthService(userRepo, hasher, issuer, cfg.TokenExpiry)
	eventSvc := services.NewEventService(eventRepo, eventCache, clk, serviceTimeout)
	bookingSvc := services.NewBookingService(bookingRepo, eventRepo, eventCache, clk, serviceTimeout)

	authController := controllers.NewAuthController(logger, authSvc)
	eventController := controllers.NewEventController(logger, eventSvc)
	bookingController := controllers.NewBookingController(logger, bookingSvc)

	limiter := middleware.NewRateLimiter(bookingRPS, bookingBurst)
	mux := httpdelivery.NewRouter(authController, eventController, bookingController, verifier, limiter)

	handler := middleware.RequestID(
		middleware.LoggingMiddleware(logger,
			middleware.CORS(cfg.CORSOrigins, mux)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
