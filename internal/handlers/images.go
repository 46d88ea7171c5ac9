package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/query"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/report"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/species"
)

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Status())
}

// HandleRefresh starts a new catalog fetch or joins the running one
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.catalog.Refresh(r.Context()); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.catalog.Status())
}

// HandleImages serves one page of the catalog filtered by ?search and
// ordered by ?sort
func (h *Handler) HandleImages(w http.ResponseWriter, r *http.Request) {
	v, err := viewFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, ok := h.snapshotOrError(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, h.page(snap, v))
}

func (h *Handler) HandleImageDetail(w http.ResponseWriter, r *http.Request) {
	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		h.writeError(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	snap, ok := h.snapshotOrError(w, r)
	if !ok {
		return
	}

	for _, rec := range snap.Images {
		if images.Filename(rec.Key) == filename {
			h.writeJSON(w, http.StatusOK, report.NewDetail(rec))
			return
		}
	}
	h.writeError(w, "Image not found", http.StatusNotFound)
}

func (h *Handler) HandleSpecies(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, species.Totals(snap.Images))
}

func (h *Handler) HandleSortOptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, query.SortKeys())
}

// HandleImageRedirect sends the client to the CDN copy of an image
func (h *Handler) HandleImageRedirect(w http.ResponseWriter, r *http.Request) {
	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil || !images.IsImageKey(filename) {
		h.writeError(w, "Image not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, images.ImageURL(h.cfg.AssetURL, h.cfg.ImagesPrefix, filename), http.StatusFound)
}

func (h *Handler) page(snap *models.Snapshot, v query.View) report.Page {
	results := query.Apply(snap.Images, v.Search, v.Sort)
	return report.NewPage(v, query.Run(v, results, h.pageSize()))
}

func viewFromQuery(q url.Values) (query.View, error) {
	sort, ok := query.ParseSort(q.Get("sort"))
	if !ok {
		return query.View{}, &paramError{name: "sort", value: q.Get("sort")}
	}

	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return query.View{}, &paramError{name: "page", value: p}
		}
		page = n
	}

	return query.NewView().WithSearch(q.Get("search")).WithSort(sort).WithPage(page), nil
}

type paramError struct {
	name, value string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + ": " + strconv.Quote(e.value)
}
