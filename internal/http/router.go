package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"news-atlas/internal/middleware"
)

type Router struct {
	chi.Router
}

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	Limiter        middleware.Limiter
	RequestTimeout time.Duration
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *Router {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	if cfg.Limiter != nil {
		r.Use(middleware.RateLimit(cfg.Limiter))
	}

	return &Router{r}
}

// RegisterNewsRoutes registers news, location and prediction routes
func (r *Router) RegisterNewsRoutes(newsHandler *NewsHandler) {
	newsHandler.RegisterRoutes(r)
}

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// RegisterHealthRoutes registers health check routes. /ready runs every check
// and answers 503 when one fails.
func (r *Router) RegisterHealthRoutes(checks map[string]ReadinessCheck) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "unavailable"
		}
		writeJSON(w, status, map[string]any{
			"status":    state,
			"checks":    results,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
