package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/app"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/utils"
)

func SetupRoutes(app *app.Application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(httprate.LimitAll(200, time.Minute))
	r.Use(app.MiddlewareHandler.RequestLogger)
	r.Use(app.MiddlewareHandler.Security)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.Envelope{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitAll(100, time.Minute))
		r.Use(app.MiddlewareHandler.Cors)

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/latest", app.MetricsHandler.HandlerGetLatestMetrics)
			r.Get("/kpis", app.MetricsHandler.HandlerGetSectorKPIs)
		})

		r.Get("/videos/{id}/timeline", app.MetricsHandler.HandlerGetVideoTimeline)
	})

	return r
}
