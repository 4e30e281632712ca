package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dawsdoon/AutoCare/internal/auth"
	"github.com/dawsdoon/AutoCare/internal/booking"
)

type RouterConfig struct {
	Service *booking.Service
	Repo    booking.Repository
	Auth    *auth.Manager
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
	Logger  zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health and metrics
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Public endpoints
	r.Post("/auth/register", registerHandler(cfg.Repo, cfg.Auth))
	r.Post("/auth/login", loginHandler(cfg.Repo, cfg.Auth))
	r.Get("/services", listServicesHandler())
	r.Get("/slots", availableSlotsHandler(cfg.Service))

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Auth))

		r.Post("/bookings", createBookingHandler(cfg.Service))
		r.Get("/bookings", listMyBookingsHandler(cfg.Service))
		r.Get("/bookings/{id}", getBookingHandler(cfg.Service))
		r.Post("/bookings/{id}/cancel", cancelBookingHandler(cfg.Service))

		r.Post("/vehicles", createVehicleHandler(cfg.Service))
		r.Get("/vehicles", listVehiclesHandler(cfg.Service))
		r.Get("/vehicles/{id}/maintenance", maintenanceScheduleHandler(cfg.Service))
	})

	// Admin endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Auth))
		r.Use(RequireAdmin)

		r.Get("/admin/bookings", adminListBookingsHandler(cfg.Service))
		r.Post("/admin/bookings/{id}/approve", approveBookingHandler(cfg.Service))
		r.Post("/admin/bookings/{id}/reject", rejectBookingHandler(cfg.Service))
		r.Post("/admin/bookings/{id}/complete", completeBookingHandler(cfg.Service))
	})

	return r
}
