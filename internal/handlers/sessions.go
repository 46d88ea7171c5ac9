package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/query"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/report"
)

// viewRequest carries the fields a client wants to change. Absent fields
// are left alone.
type viewRequest struct {
	Search *string `json:"search"`
	Sort   *string `json:"sort"`
	Page   *int    `json:"page"`
}

type viewResponse struct {
	View    models.ViewSession `json:"view"`
	Results *report.Page       `json:"results,omitempty"`
}

func (h *Handler) HandleViews(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.viewStore.GetAll())
}

func (h *Handler) HandleCreateView(w http.ResponseWriter, r *http.Request) {
	change, ok := h.decodeViewRequest(w, r)
	if !ok {
		return
	}

	v := change.apply(query.NewView())
	session := h.viewStore.Create(models.ViewSession{
		Search:           v.Search,
		Sort:             string(v.Sort),
		Page:             v.Page,
		CatalogFetchedAt: h.catalogFetchedAt(),
	})
	h.writeJSON(w, http.StatusCreated, viewResponse{View: session})
}

// HandleViewDetail serves the view's current page. A view saved against an
// older catalog is moved back to page 1 first.
func (h *Handler) HandleViewDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := h.getViewOrError(w, id)
	if !ok {
		return
	}

	snap, ok := h.snapshotOrError(w, r)
	if !ok {
		return
	}

	if !session.CatalogFetchedAt.Equal(snap.FetchedAt) {
		updated, exists := h.viewStore.Update(id, func(s *models.ViewSession) {
			s.Page = rebase(toView(*s), s.CatalogFetchedAt, snap.FetchedAt).Page
			s.CatalogFetchedAt = snap.FetchedAt
		})
		if !exists {
			h.writeError(w, "View not found", http.StatusNotFound)
			return
		}
		session = updated
	}

	page := h.page(snap, toView(session))
	h.writeJSON(w, http.StatusOK, viewResponse{View: session, Results: &page})
}

// HandleUpdateView changes a view's search, sort or page. Changing the
// search or sort returns the view to page 1.
func (h *Handler) HandleUpdateView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.getViewOrError(w, id); !ok {
		return
	}

	change, ok := h.decodeViewRequest(w, r)
	if !ok {
		return
	}

	fetchedAt := h.catalogFetchedAt()
	updated, exists := h.viewStore.Update(id, func(s *models.ViewSession) {
		v := change.apply(rebase(toView(*s), s.CatalogFetchedAt, fetchedAt))
		s.Search = v.Search
		s.Sort = string(v.Sort)
		s.Page = v.Page
		if !fetchedAt.IsZero() {
			s.CatalogFetchedAt = fetchedAt
		}
	})
	if !exists {
		h.writeError(w, "View not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, viewResponse{View: updated})
}

// viewChange is a validated view request
type viewChange struct {
	search *string
	sort   *query.SortKey
	page   *int
}

func (c viewChange) apply(v query.View) query.View {
	if c.search != nil {
		v = v.WithSearch(*c.search)
	}
	if c.sort != nil {
		v = v.WithSort(*c.sort)
	}
	if c.page != nil {
		v = v.WithPage(*c.page)
	}
	return v
}

// rebase returns v on page 1 when it was saved against a different catalog
func rebase(v query.View, savedAt, fetchedAt time.Time) query.View {
	if savedAt.IsZero() || fetchedAt.IsZero() || savedAt.Equal(fetchedAt) {
		return v
	}
	return v.WithPage(1)
}

// View helpers
func (h *Handler) getViewOrError(w http.ResponseWriter, id string) (models.ViewSession, bool) {
	session, exists := h.viewStore.Get(id)
	if !exists {
		h.writeError(w, "View not found", http.StatusNotFound)
		return models.ViewSession{}, false
	}
	return session, true
}

func (h *Handler) decodeViewRequest(w http.ResponseWriter, r *http.Request) (viewChange, bool) {
	var req viewRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if errors.Is(err, io.EOF) {
		return viewChange{}, true
	}
	if err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return viewChange{}, false
	}

	change := viewChange{search: req.Search, page: req.Page}
	if req.Sort != nil {
		sort, ok := query.ParseSort(*req.Sort)
		if !ok {
			h.writeError(w, (&paramError{name: "sort", value: *req.Sort}).Error(), http.StatusBadRequest)
			return viewChange{}, false
		}
		change.sort = &sort
	}
	return change, true
}

// catalogFetchedAt is the fetch time of the loaded catalog, or zero
func (h *Handler) catalogFetchedAt() time.Time {
	if at := h.catalog.Status().FetchedAt; at != nil {
		return *at
	}
	return time.Time{}
}

func toView(s models.ViewSession) query.View {
	return query.View{Search: s.Search, Sort: query.SortKey(s.Sort), Page: s.Page}
}
