// Package gallery ingests zip archives of images into galleries and removes
// galleries together with the photos only they own.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/log"
)

type Service struct {
	cfg     config.GalleryServerConfig
	store   store.GalleryStore
	photos  blob.Store
	scratch blob.Store
	log     log.LoggerService

	now   func() time.Time
	newID func() string
}

// NewService wires the ingestion routine. Photos go to the photos store,
// archive submissions to scratch.
func NewService(cfg config.GalleryServerConfig, st store.GalleryStore, photos, scratch blob.Store, logger log.LoggerService) *Service {
	if cfg.MaxTitleLength <= 0 {
		cfg.MaxTitleLength = 120
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.PhotoPrefix == "" {
		cfg.PhotoPrefix = "galleries/photos"
	}
	if cfg.ArchivePrefix == "" {
		cfg.ArchivePrefix = "galleries/archives"
	}

	return &Service{
		cfg:     cfg,
		store:   st,
		photos:  photos,
		scratch: scratch,
		log:     logger.Named("gallery"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Service) validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTitle)
	}
	if n := utf8.RuneCountInString(title); n > s.cfg.MaxTitleLength {
		return fmt.Errorf("%w: title has %d characters, limit is %d", ErrInvalidTitle, n, s.cfg.MaxTitleLength)
	}
	return nil
}

// CreateGallery adds an empty, active gallery.
func (s *Service) CreateGallery(ctx context.Context, title, description string) (*models.Gallery, error) {
	if err := s.validateTitle(title); err != nil {
		return nil, err
	}

	gallery := &models.Gallery{
		Entry:       models.Entry{Title: title, Active: true},
		Description: description,
	}
	if err := s.store.CreateGallery(ctx, gallery); err != nil {
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}
	return gallery, nil
}

// Gallery loads a gallery with its photos.
func (s *Service) Gallery(ctx context.Context, id uint) (*models.Gallery, error) {
	gallery, err := s.store.GetGallery(ctx, id)
	if err != nil {
		return nil, err
	}

	photos, err := s.store.ListGalleryPhotos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos of gallery %d: %w", id, err)
	}
	gallery.Photos = photos
	return gallery, nil
}

// PhotoURL resolves where a stored photo can be fetched from.
func (s *Service) PhotoURL(photo *models.Photo) string {
	return s.photos.URL(photo.Path)
}

// AddPhoto stores a single uploaded image, optionally attaching it to a gallery.
func (s *Service) AddPhoto(ctx context.Context, filename string, data []byte, galleryID *uint, title string) (*models.Photo, error) {
	if err := s.validateTitle(title); err != nil {
		return nil, err
	}

	img, err := decodeImage(data, s.cfg.MaxPixels)
	if err != nil {
		return nil, &ImageDecodeError{Member: filename, Err: err}
	}

	if _, err := s.store.GetPhotoByTitle(ctx, title); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrTitleTaken, title)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up photo %q: %w", title, err)
	}

	var gallery *models.Gallery
	if galleryID != nil {
		if gallery, err = s.store.GetGallery(ctx, *galleryID); err != nil {
			return nil, fmt.Errorf("failed to load gallery %d: %w", *galleryID, err)
		}
	}

	if memberBase(filename) == "" {
		filename = s.newID() + "." + img.Format
	}

	photo, err := s.storePhoto(ctx, filename, data, img, title)
	if err != nil {
		return nil, err
	}

	if gallery != nil {
		if err := s.store.AttachPhoto(ctx, gallery.ID, photo.ID); err != nil {
			return nil, fmt.Errorf("failed to attach photo %d to gallery %d: %w", photo.ID, gallery.ID, err)
		}
	}
	return photo, nil
}
