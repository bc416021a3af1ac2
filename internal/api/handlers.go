package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/gallery"
)

func parseID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Public routes

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	number := 1
	if raw := chi.URLParam(r, "page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusNotFound, "page not found")
			return
		}
		number = n
	}

	page, err := h.blog.ListPublished(r.Context(), number)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.Published(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.Preview(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) Writing(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.Writing(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

type photoPost struct {
	models.Post
	Cover string `json:"cover,omitempty"`
}

// Photos lists published gallery posts, each with a random landscape cover.
func (h *Handler) Photos(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.Galleries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]photoPost, 0, len(posts))
	for _, post := range posts {
		item := photoPost{Post: post}
		if post.GalleryID != nil {
			cover, err := h.blog.CoverPhoto(r.Context(), *post.GalleryID)
			if err == nil {
				item.Cover = h.gallery.PhotoURL(cover)
			}
		}
		out = append(out, item)
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": out})
}

type photoView struct {
	models.Photo
	URL string `json:"url"`
}

func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "gallery not found")
		return
	}

	g, err := h.gallery.Gallery(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	photos := make([]photoView, 0, len(g.Photos))
	for _, p := range g.Photos {
		photos = append(photos, photoView{Photo: p, URL: h.gallery.PhotoURL(&p)})
	}
	g.Photos = nil

	respondJSON(w, http.StatusOK, map[string]any{
		"gallery": g,
		"photos":  photos,
	})
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rss, err := h.feed.RSS(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	io.WriteString(w, rss)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Health(r.Context()); err != nil {
		h.log.Warn("Health check failed: %v", err)
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Media serves photo blobs for deployments without a separate media host.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	data, err := h.media.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, blob.ErrNotExist) {
			h.log.Warn("Failed to serve media %s: %v", key, err)
		}
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, path.Base(key), time.Time{}, bytes.NewReader(data))
}

// Admin routes

type postRequest struct {
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Active    *bool     `json:"active"`
	PublishAt time.Time `json:"publish_at"`
	GalleryID *uint     `json:"gallery_id"`
}

func (req postRequest) apply(post *models.Post) {
	post.Title = req.Title
	post.Slug = req.Slug
	post.Body = req.Body
	post.PublishAt = req.PublishAt
	post.GalleryID = req.GalleryID
	post.Active = true
	if req.Active != nil {
		post.Active = *req.Active
	}
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	post := &models.Post{}
	req.apply(post)
	if err := h.blog.SavePost(r.Context(), post); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	post := &models.Post{ID: id}
	req.apply(post)
	if err := h.blog.SavePost(r.Context(), post); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	if err := h.blog.DeletePost(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateGallery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	g, err := h.gallery.CreateGallery(r.Context(), req.Title, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (h *Handler) DeleteGallery(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "gallery not found")
		return
	}

	report, err := h.gallery.DeleteGallery(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type uploadResponse struct {
	GalleryID    uint     `json:"gallery_id"`
	Created      int      `json:"created"`
	Reused       int      `json:"reused"`
	Skipped      []string `json:"skipped"`
	CleanupError string   `json:"cleanup_error,omitempty"`
}

// UploadArchive ingests a multipart zip upload (fields archive, title and
// optional gallery_id).
func (h *Handler) UploadArchive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing archive")
		return
	}
	defer file.Close()

	galleryID, ok := formID(r, "gallery_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid gallery_id")
		return
	}

	report, err := h.gallery.Ingest(r.Context(), file, galleryID, r.FormValue("title"))
	var cleanup *gallery.CleanupError
	if err != nil && !(errors.As(err, &cleanup) && report != nil) {
		h.fail(w, r, err)
		return
	}

	resp := uploadResponse{
		GalleryID: report.Gallery.ID,
		Created:   len(report.Created()),
		Reused:    len(report.Reused()),
		Skipped:   report.Skipped(),
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	if cleanup != nil {
		h.log.Error("Archive ingested but cleanup failed: %v", cleanup)
		resp.CleanupError = cleanup.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

type photoResponse struct {
	models.Photo
	URL string `json:"url"`
}

// UploadPhoto stores a single image (fields photo, title, optional gallery_id).
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing photo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	galleryID, ok := formID(r, "gallery_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid gallery_id")
		return
	}

	photo, err := h.gallery.AddPhoto(r.Context(), header.Filename, data, galleryID, r.FormValue("title"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, photoResponse{Photo: *photo, URL: h.gallery.PhotoURL(photo)})
}

func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err := h.gallery.DeletePhoto(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// formID reads an optional numeric form field; ok is false when the value is
// present but malformed.
func formID(r *http.Request, name string) (*uint, bool) {
	raw := r.FormValue(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}
