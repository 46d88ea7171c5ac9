package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the API router. metrics may be nil.
func (h *Handler) Routes(metrics http.Handler, observer RequestObserver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(observer))
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Get("/images/{filename}", h.HandleImageRedirect)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/images", h.HandleImages)
		r.Get("/images/{filename}", h.HandleImageDetail)
		r.Get("/species", h.HandleSpecies)
		r.Get("/sort-options", h.HandleSortOptions)
		r.Get("/views", h.HandleViews)
		r.Post("/views", h.HandleCreateView)
		r.Get("/views/{id}", h.HandleViewDetail)
		r.Put("/views/{id}", h.HandleUpdateView)
	})

	return r
}

func requestLogger(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			slog.Debug("HTTP Request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
			if observer != nil {
				observer.ObserveHTTPRequest(r.Method, route, status, time.Since(start))
			}
		})
	}
}
