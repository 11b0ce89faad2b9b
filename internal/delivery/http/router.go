package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Booking mutations sit behind the rate limiter; event reads are public.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	bookingController *controllers.BookingController,
	verifier domain.TokenVerifier,
	limiter *middleware.RateLimiter,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /auth/profile", auth(authController.Profile))

	// Events
	mux.HandleFunc("GET /events", eventController.List)
	mux.HandleFunc("GET /events/{eventID}", eventController.Get)
	mux.HandleFunc("POST /events", auth(eventController.Create))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.Delete))

	// Bookings
	mux.HandleFunc("POST /events/{eventID}/bookings", limiter.Limit(auth(bookingController.Book)))
	mux.HandleFunc("GET /bookings", auth(bookingController.ListMine))
	mux.HandleFunc("DELETE /bookings/{bookingID}", limiter.Limit(auth(bookingController.Cancel)))

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
