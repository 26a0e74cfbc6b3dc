package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/onco-erp/onco/internal/notifications"
	"github.com/onco-erp/onco/internal/observability"
	"github.com/onco-erp/onco/internal/platform/httpx"
	"github.com/onco-erp/onco/internal/procurement"
	"github.com/onco-erp/onco/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	Redis               *redis.Client
	ProcurementHandler  *procurement.Handler
	NotificationHandler *notifications.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Onco defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "redis": "ok"}
		code := http.StatusOK
		if params.Redis != nil {
			if err := params.Redis.Ping(r.Context()).Err(); err != nil {
				logger(params.Logger).Warn("healthz redis ping", slog.Any("error", err))
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		} else {
			status["redis"] = "disabled"
		}
		httpx.JSON(w, code, status)
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	if params.ProcurementHandler != nil {
		r.Route("/api/procurement", params.ProcurementHandler.MountRoutes)
	}
	if params.NotificationHandler != nil {
		r.Route("/api/notifications", params.NotificationHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
