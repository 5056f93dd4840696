package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// maxUploadBytes bounds a single asset upload.
const maxUploadBytes = 32 << 20

// FilesHandler handles asset upload, the object-store proxy route and
// the local static route.
type FilesHandler struct {
	service    catalogmedia.Service
	uploadsDir string
}

func NewFilesHandler(service catalogmedia.Service, uploadsDir string) *FilesHandler {
	return &FilesHandler{
		service:    service,
		uploadsDir: uploadsDir,
	}
}

// Routes returns the router for file upload endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.UploadAsset)
	return r
}

// UploadResponse carries the opaque asset key for a stored upload. The
// key, not a URL: where the bytes ended up is re-derived at resolution
// time.
type UploadResponse struct {
	Key string `json:"key"`
}

// UploadAsset stores a multipart file upload and returns its asset key.
func (h *FilesHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Failed to read upload", "error", err)
		http.Error(w, "Missing or invalid 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key, err := h.service.StoreAsset(r.Context(), file, header.Filename)
	if err != nil {
		slog.Error("Failed to store asset", "file_name", header.Filename, "error", err)
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	slog.Info("Asset stored", "key", key, "file_name", header.Filename)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{Key: key})
}

// ProxyAsset streams object-store bytes through the application so the
// browser never talks to the remote store directly (direct remote URLs
// fail cross-origin checks for some asset types).
func (h *FilesHandler) ProxyAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "Missing asset key", http.StatusBadRequest)
		return
	}

	rc, err := h.service.OpenAsset(r.Context(), key)
	if err != nil {
		if errors.Is(err, catalogmedia.ErrAssetNotFound) {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to open asset", "key", key, "error", err)
		http.Error(w, "Asset unavailable", http.StatusBadGateway)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Proxy stream interrupted", "key", key, "error", err)
	}
}

// ServeUpload serves a file from the local uploads directory by
// filename. Path traversal is cut off by flattening to the base name.
func (h *FilesHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "name"))
	if name == "" || name == "." || name == "/" {
		http.Error(w, "Missing file name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.uploadsDir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}
