package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/config"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/gallery"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/storage"
)

// Catalog is the part of gallery.Session the handlers use
type Catalog interface {
	Ensure(ctx context.Context) (*models.Snapshot, error)
	Refresh(ctx context.Context) (*models.Snapshot, error)
	Status() gallery.Status
}

// RequestObserver records per-route request metrics
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

type Handler struct {
	catalog   Catalog
	viewStore *storage.ViewStore
	cfg       *config.Config
}

func New(catalog Catalog, cfg *config.Config) *Handler {
	return &Handler{
		catalog:   catalog,
		viewStore: storage.New(),
		cfg:       cfg,
	}
}

// apiError is the body of every non-2xx API response
type apiError struct {
	Error string `json:"error"`
	Retry string `json:"retry,omitempty"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Warn("Request failed", "status", code, "error", message)
	h.writeJSON(w, code, apiError{Error: message})
}

// writeCatalogError reports a failed catalog fetch. The client may retry
// with an explicit refresh.
func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	slog.Error("Catalog unavailable", "error", err)
	h.writeJSON(w, http.StatusBadGateway, apiError{
		Error: err.Error(),
		Retry: "POST /api/refresh",
	})
}

// snapshotOrError loads the catalog, writing a 502 on failure
func (h *Handler) snapshotOrError(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	snap, err := h.catalog.Ensure(r.Context())
	if err != nil {
		h.writeCatalogError(w, err)
		return nil, false
	}
	return snap, true
}

func (h *Handler) pageSize() int {
	if h.cfg == nil || h.cfg.PageSize < 1 {
		return config.DefaultPageSize
	}
	return h.cfg.PageSize
}
