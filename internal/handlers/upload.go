package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pantry-pal/apiserver/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	maxUploadMemory = 8 << 20
	maxImageBytes   = 16 << 20
	formFieldImage  = "image"
)

// UploadHandler stores and serves user-uploaded images.
type UploadHandler struct {
	images storage.ImageStore
}

func NewUploadHandler(images storage.ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// UploadRouter registers upload routes on the given router. Reads are open;
// the upload itself goes through the session middleware when one is
// supplied.
func UploadRouter(r chi.Router, images storage.ImageStore, sessionMiddleware func(http.Handler) http.Handler) {
	handler := NewUploadHandler(images)

	r.Route("/upload", func(r chi.Router) {
		if sessionMiddleware != nil {
			r.With(sessionMiddleware).Post("/", handler.Upload)
		} else {
			r.Post("/", handler.Upload)
		}
		r.Get("/{key}", handler.Serve)
	})
}

// UploadResponse names the stored object and the path it is served from.
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Upload accepts a multipart image and stores it under a generated key.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not enabled on this server")
		return
	}

	if _, err := userIDFromContext(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Missing image file in the request")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusUnprocessableEntity, "Image exceeds the maximum allowed size")
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, err := storage.ExtensionFor(contentType)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Only image uploads are accepted")
		return
	}

	key := uuid.NewString() + ext
	if err := h.images.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("image upload failed")
		writeError(w, http.StatusUnprocessableEntity, "Failed to store the uploaded image")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{Key: key, URL: "/api/upload/" + key})
}

// Serve streams a stored image back to the client.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not enabled on this server")
		return
	}

	key := chi.URLParam(r, "key")
	object, err := h.images.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "No image found with that key")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(key))
	if _, err := io.Copy(w, object); err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Str("key", key).Msg("image stream interrupted")
	}
}
