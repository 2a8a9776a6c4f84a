package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicore/appointment-system/internal/auth"
	"github.com/clinicore/appointment-system/internal/booking"
	"github.com/clinicore/appointment-system/internal/directory"
)

type RouterConfig struct {
	Booking   *booking.Service
	Auth      *auth.Service
	Directory *directory.Service
	Tokens    *auth.TokenIssuer
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Logger    zerolog.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public auth endpoints
	r.Post("/auth/register", registerHandler(cfg.Auth))
	r.Post("/auth/login", loginHandler(cfg.Auth))

	// Everything else requires a valid token
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))

		r.Post("/appointments", createAppointmentHandler(cfg.Booking))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/no-show", noShowAppointmentHandler(cfg.Booking))
		r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Booking))

		r.Get("/patients/{id}/appointments", listPatientAppointmentsHandler(cfg.Booking))
		r.Get("/doctors/{id}/appointments", listDoctorAppointmentsHandler(cfg.Booking))

		r.Get("/doctors", listDoctorsHandler(cfg.Directory))
		r.Get("/departments", listDepartmentsHandler(cfg.Directory))
	})

	return r
}
