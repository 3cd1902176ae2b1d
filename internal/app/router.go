package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/projectledger/projectledger/internal/analytics"
	"github.com/projectledger/projectledger/internal/bookings"
	"github.com/projectledger/projectledger/internal/commission"
	"github.com/projectledger/projectledger/internal/ledger"
	"github.com/projectledger/projectledger/internal/metrics"
	"github.com/projectledger/projectledger/internal/observability"
	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/tasks"
	"github.com/projectledger/projectledger/jobs"
)

// CacheInvalidator bumps derived-data caches after a successful write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	ProjectsHandler   *projects.Handler
	BookingsHandler   *bookings.Handler
	CommissionHandler *commission.Handler
	LedgerHandler     *ledger.Handler
	MetricsHandler    *metrics.Handler
	TasksHandler      *tasks.Handler
	AnalyticsHandler  *analytics.Handler
	JobHandler        *jobs.Handler
	Invalidator       CacheInvalidator
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Writes to projects, bookings and ledger entries change KPI inputs,
		// so those groups bump the metrics cache version after a 2xx.
		r.Group(func(r chi.Router) {
			if params.Invalidator != nil {
				r.Use(invalidateOnWrite(params.Invalidator, params.Logger))
			}
			r.Route("/projects", params.ProjectsHandler.MountRoutes)
			r.Route("/bookings", params.BookingsHandler.MountRoutes)
			r.Route("/commissions", params.CommissionHandler.MountRoutes)
			params.LedgerHandler.MountRoutes(r)
		})
		// Tasks and traffic analytics never feed KPI computation, so they
		// stay outside the bump group.
		if params.TasksHandler != nil {
			r.Route("/tasks", params.TasksHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		}
		r.Route("/kpis", params.MetricsHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func invalidateOnWrite(invalidator CacheInvalidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= 200 && ww.Status() < 300 {
				if err := invalidator.Invalidate(r.Context()); err != nil && logger != nil {
					logger.Warn("bump metrics cache", slog.Any("error", err))
				}
			}
		})
	}
}
