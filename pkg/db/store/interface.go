package store

import (
	"context"
	"time"

	"github.com/mwantia/wind/pkg/db/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by single-row lookups that match nothing
var ErrNotFound = gorm.ErrRecordNotFound

// PostKind narrows post listings by whether a gallery is attached
type PostKind int

const (
	AnyPosts PostKind = iota
	WritingPosts
	GalleryPosts
)

// GalleryStore defines the interface for database operations
type GalleryStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Transaction runs fn against a store bound to a single transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx GalleryStore) error) error

	// Gallery operations
	CreateGallery(ctx context.Context, gallery *models.Gallery) error
	GetGallery(ctx context.Context, id uint) (*models.Gallery, error)
	ListGalleries(ctx context.Context) ([]models.Gallery, error)
	UpdateGallery(ctx context.Context, gallery *models.Gallery) error
	DeleteGallery(ctx context.Context, id uint) error

	// Photo operations
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhoto(ctx context.Context, id uint) (*models.Photo, error)
	GetPhotoByTitle(ctx context.Context, title string) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, photo *models.Photo) error
	DeletePhoto(ctx context.Context, id uint) error
	ListGalleryPhotos(ctx context.Context, galleryID uint) ([]models.Photo, error)
	RandomLandscapePhoto(ctx context.Context, galleryID uint) (*models.Photo, error)

	// Gallery/photo relation
	AttachPhoto(ctx context.Context, galleryID, photoID uint) error
	DetachPhoto(ctx context.Context, galleryID, photoID uint) error
	DetachPhotoEverywhere(ctx context.Context, photoID uint) error
	ClearGallery(ctx context.Context, galleryID uint) error
	IsAttached(ctx context.Context, galleryID, photoID uint) (bool, error)
	CountPhotoGalleries(ctx context.Context, photoID uint) (int64, error)

	// Post operations
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	ListPublishedPosts(ctx context.Context, now time.Time, kind PostKind, limit, offset int) ([]models.Post, error)
	CountPublishedPosts(ctx context.Context, now time.Time, kind PostKind) (int64, error)
	UnlinkGalleryPosts(ctx context.Context, galleryID uint) error

	// Submission operations
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	DeleteSubmission(ctx context.Context, id string) error
}
