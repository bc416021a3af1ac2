package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/blog"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/feed"
	"github.com/mwantia/wind/pkg/gallery"
	"github.com/mwantia/wind/pkg/log"
)

type Handler struct {
	cfg     config.HTTPServerConfig
	store   store.GalleryStore
	blog    *blog.Service
	gallery *gallery.Service
	feed    *feed.Builder
	media   blob.Store
	log     log.LoggerService
}

func NewHandler(cfg config.HTTPServerConfig, st store.GalleryStore, posts *blog.Service, galleries *gallery.Service, rss *feed.Builder, media blob.Store, logger log.LoggerService) *Handler {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 256 << 20
	}

	return &Handler{
		cfg:     cfg,
		store:   st,
		blog:    posts,
		gallery: galleries,
		feed:    rss,
		media:   media,
		log:     logger.Named("http"),
	}
}

// Router builds the public and admin routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.Index)
	r.Get("/page/{page}", h.Index)
	r.Get("/post/{slug}", h.Post)
	r.Get("/preview/{slug}", h.Preview)
	r.Get("/writing", h.Writing)
	r.Get("/photos", h.Photos)
	r.Get("/galleries/{id}", h.Gallery)
	r.Get("/feeds/recent", h.Feed)
	r.Get("/healthz", h.Health)
	r.Get("/media/*", h.Media)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/posts", h.CreatePost)
		r.Put("/posts/{id}", h.UpdatePost)
		r.Delete("/posts/{id}", h.DeletePost)

		r.Post("/galleries", h.CreateGallery)
		r.Post("/galleries/upload", h.UploadArchive)
		r.Delete("/galleries/{id}", h.DeleteGallery)

		r.Post("/photos", h.UploadPhoto)
		r.Delete("/photos/{id}", h.DeletePhoto)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.log.Debug("%s %s -> %d (%d bytes, %s) [%s]",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start), middleware.GetReqID(r.Context()))
	})
}
