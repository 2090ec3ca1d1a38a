// Package router wires the HTTP surface: public booking endpoints, login,
// and the admin API behind JWT auth.
package router

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/velvetrow/salonbook/internal/appointments"
	"github.com/velvetrow/salonbook/internal/auth"
	"github.com/velvetrow/salonbook/internal/availability"
	"github.com/velvetrow/salonbook/internal/finance"
	httpmiddleware "github.com/velvetrow/salonbook/internal/http/middleware"
	"github.com/velvetrow/salonbook/internal/reports"
	"github.com/velvetrow/salonbook/internal/schedule"
	"github.com/velvetrow/salonbook/internal/stock"
	"github.com/velvetrow/salonbook/internal/uploads"
	"github.com/velvetrow/salonbook/internal/users"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Config holds the handlers and settings the router mounts.
type Config struct {
	Logger *logging.Logger

	Availability *availability.Handler
	Appointments *appointments.Handler
	Schedule     *schedule.Handler
	Finance      *finance.Handler
	Stock        *stock.Handler
	Reports      *reports.Handler
	Users        *users.Handler
	Auth         *auth.Handler
	Uploads      *uploads.Handler

	MetricsHandler http.Handler

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	// UploadDir, when set, is served under /uploads for disk-stored images.
	UploadDir string
}

// New builds the chi router.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.UploadDir != "" {
		dir := http.Dir(filepath.Clean(cfg.UploadDir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(dir)))
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Auth != nil {
			api.Post("/login", cfg.Auth.Login)
			api.Post("/password-reset", cfg.Auth.RequestReset)
			api.Post("/password-reset/confirm", cfg.Auth.ConfirmReset)
		}
		if cfg.Availability != nil {
			api.Get("/availability", cfg.Availability.Get)
		}
		if cfg.Appointments != nil {
			api.Mount("/appointments", cfg.Appointments.Routes())
			api.Get("/users/{userID}/appointments", cfg.Appointments.ListByUser)
		}
		if cfg.Users != nil {
			api.Post("/users", cfg.Users.Create)
		}
		if cfg.Uploads != nil {
			api.Post("/uploads", cfg.Uploads.Upload)
		}

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))

			if cfg.Schedule != nil {
				admin.Mount("/schedule", cfg.Schedule.Routes())
			}
			if cfg.Finance != nil {
				admin.Get("/finance", cfg.Finance.List)
			}
			if cfg.Stock != nil {
				admin.Mount("/stock", cfg.Stock.Routes())
			}
			if cfg.Reports != nil {
				admin.Get("/reports", cfg.Reports.Get)
			}
			if cfg.Users != nil {
				admin.Mount("/users", cfg.Users.Routes())
			}
			if cfg.Auth != nil {
				admin.Mount("/password-reset-tokens", cfg.Auth.TokenRoutes())
			}
		})
	})

	return r
}
