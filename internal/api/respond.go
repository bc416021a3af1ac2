package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mwantia/wind/pkg/blog"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/gallery"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var corrupt *gallery.ArchiveCorruptError
	var decode *gallery.ImageDecodeError

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &corrupt),
		errors.As(err, &decode),
		errors.Is(err, gallery.ErrInvalidTitle),
		errors.Is(err, blog.ErrInvalidPost):
		return http.StatusBadRequest
	case errors.Is(err, gallery.ErrTitleTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
