package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// CatalogHandler handles catalog CRUD and row mutation endpoints.
type CatalogHandler struct {
	service catalogmedia.Service
}

func NewCatalogHandler(service catalogmedia.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Routes returns the router for catalog endpoints
func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateCatalog)
	r.Get("/", h.ListCatalogs)
	r.Get("/{catalog_id}", h.GetCatalog)
	r.Delete("/{catalog_id}", h.DeleteCatalog)
	r.Post("/{catalog_id}/thumbnail", h.SetThumbnail)
	r.Post("/{catalog_id}/rows", h.AddRow)
	r.Put("/{catalog_id}/rows/{index}", h.UpdateRow)
	r.Delete("/{catalog_id}/rows/{index}", h.DeleteRow)
	return r
}

// errorBody is the JSON error shape for every catalog endpoint. Reason
// stays distinct per failure so the UI can message "no such catalog"
// and "exists but forbidden" differently even though both currently
// send the user back to the listing view.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	reason := catalogmedia.DenyReasonOf(err)

	switch {
	case reason == catalogmedia.DenyMalformedID, errors.Is(err, catalogmedia.ErrMalformedID):
		status = http.StatusBadRequest
	case reason == catalogmedia.DenyNotFound, errors.Is(err, catalogmedia.ErrCatalogNotFound):
		status = http.StatusNotFound
	case reason == catalogmedia.DenyNotOwner, errors.Is(err, catalogmedia.ErrUnauthorized):
		status = http.StatusForbidden
	case reason == catalogmedia.DenyBackendUnavailable, errors.Is(err, catalogmedia.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, catalogmedia.ErrRowIndexOutOfRange):
		status = http.StatusBadRequest
	}

	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: err.Error(), Reason: string(reason)})
}

func (h *CatalogHandler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req catalogmedia.CreateCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Catalog name is required", http.StatusBadRequest)
		return
	}

	catalog, err := h.service.CreateCatalog(r.Context(), identity, req)
	if err != nil {
		slog.Error("Failed to create catalog", "error", err)
		writeServiceError(w, r, err)
		return
	}

	slog.Info("Catalog created", "catalog_id", catalog.ID, "owner", catalogmedia.ResolveOwner(catalog))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, catalog)
}

func (h *CatalogHandler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	catalogs, err := h.service.ListCatalogs(r.Context(), identity)
	if err != nil {
		slog.Error("Failed to list catalogs", "error", err)
		writeServiceError(w, r, err)
		return
	}
	if catalogs == nil {
		catalogs = []*catalogmedia.Catalog{}
	}
	render.JSON(w, r, catalogs)
}

func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	view, err := h.service.GetCatalog(r.Context(), identity, catalogID)
	if err != nil {
		slog.Warn("Failed to get catalog", "catalog_id", catalogID, "error", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

func (h *CatalogHandler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	if err := h.service.DeleteCatalog(r.Context(), identity, catalogID); err != nil {
		slog.Warn("Failed to delete catalog", "catalog_id", catalogID, "error", err)
		writeServiceError(w, r, err)
		return
	}

	slog.Info("Catalog deleted", "catalog_id", catalogID)
	render.JSON(w, r, map[string]string{"status": "deleted"})
}

// SetThumbnailRequest carries the new thumbnail reference: an external
// URL or an asset key from a prior upload.
type SetThumbnailRequest struct {
	Ref string `json:"ref"`
}

func (h *CatalogHandler) SetThumbnail(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	var req SetThumbnailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetThumbnail(r.Context(), identity, catalogID, req.Ref); err != nil {
		slog.Warn("Failed to set thumbnail", "catalog_id", catalogID, "error", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "updated"})
}

func (h *CatalogHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	var row catalogmedia.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.AddRow(r.Context(), identity, catalogID, row); err != nil {
		slog.Warn("Failed to add row", "catalog_id", catalogID, "error", err)
		writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"status": "added"})
}

func (h *CatalogHandler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid row index", http.StatusBadRequest)
		return
	}

	var row catalogmedia.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateRow(r.Context(), identity, catalogID, index, row); err != nil {
		slog.Warn("Failed to update row", "catalog_id", catalogID, "index", index, "error", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "updated"})
}

func (h *CatalogHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid row index", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteRow(r.Context(), identity, catalogID, index); err != nil {
		slog.Warn("Failed to delete row", "catalog_id", catalogID, "index", index, "error", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "deleted"})
}
