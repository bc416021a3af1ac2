package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/wind/pkg/db/migrations"
	"github.com/mwantia/wind/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements GalleryStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
	LogLevel    logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed gallery store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	dsn := cfg.Path
	if cfg.BusyTimeout > 0 {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn = fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dsn, sep, cfg.BusyTimeout.Milliseconds())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate applies pending versioned migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Transaction(ctx context.Context, fn func(tx GalleryStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLiteStore{db: tx, path: s.path})
	})
}

// Gallery operations

func (s *SQLiteStore) CreateGallery(ctx context.Context, gallery *models.Gallery) error {
	return s.db.WithContext(ctx).Create(gallery).Error
}

func (s *SQLiteStore) GetGallery(ctx context.Context, id uint) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := s.db.WithContext(ctx).First(&gallery, id).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

func (s *SQLiteStore) ListGalleries(ctx context.Context) ([]models.Gallery, error) {
	var galleries []models.Gallery
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&galleries).Error
	return galleries, err
}

func (s *SQLiteStore) UpdateGallery(ctx context.Context, gallery *models.Gallery) error {
	return s.db.WithContext(ctx).Save(gallery).Error
}

func (s *SQLiteStore) DeleteGallery(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Gallery{}, id).Error
}

// Photo operations

func (s *SQLiteStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	return s.db.WithContext(ctx).Create(photo).Error
}

func (s *SQLiteStore) GetPhoto(ctx context.Context, id uint) (*models.Photo, error) {
	var photo models.Photo
	if err := s.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (s *SQLiteStore) GetPhotoByTitle(ctx context.Context, title string) (*models.Photo, error) {
	var photo models.Photo
	err := s.db.WithContext(ctx).Where("title = ?", title).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (s *SQLiteStore) UpdatePhoto(ctx context.Context, photo *models.Photo) error {
	return s.db.WithContext(ctx).Save(photo).Error
}

func (s *SQLiteStore) DeletePhoto(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Photo{}, id).Error
}

func (s *SQLiteStore) ListGalleryPhotos(ctx context.Context, galleryID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := s.db.WithContext(ctx).
		Joins("JOIN gallery_photos ON gallery_photos.photo_id = photos.id").
		Where("gallery_photos.gallery_id = ?", galleryID).
		Order("photos.title ASC").
		Find(&photos).Error
	return photos, err
}

func (s *SQLiteStore) RandomLandscapePhoto(ctx context.Context, galleryID uint) (*models.Photo, error) {
	var photo models.Photo
	err := s.db.WithContext(ctx).
		Joins("JOIN gallery_photos ON gallery_photos.photo_id = photos.id").
		Where("gallery_photos.gallery_id = ? AND photos.width > photos.height", galleryID).
		Order("RANDOM()").
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Relation operations

func (s *SQLiteStore) AttachPhoto(ctx context.Context, galleryID, photoID uint) error {
	link := models.GalleryPhoto{GalleryID: galleryID, PhotoID: photoID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (s *SQLiteStore) DetachPhoto(ctx context.Context, galleryID, photoID uint) error {
	return s.db.WithContext(ctx).
		Where("gallery_id = ? AND photo_id = ?", galleryID, photoID).
		Delete(&models.GalleryPhoto{}).Error
}

func (s *SQLiteStore) DetachPhotoEverywhere(ctx context.Context, photoID uint) error {
	return s.db.WithContext(ctx).Where("photo_id = ?", photoID).Delete(&models.GalleryPhoto{}).Error
}

func (s *SQLiteStore) ClearGallery(ctx context.Context, galleryID uint) error {
	return s.db.WithContext(ctx).Where("gallery_id = ?", galleryID).Delete(&models.GalleryPhoto{}).Error
}

func (s *SQLiteStore) IsAttached(ctx context.Context, galleryID, photoID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.GalleryPhoto{}).
		Where("gallery_id = ? AND photo_id = ?", galleryID, photoID).
		Count(&count).Error
	return count > 0, err
}

func (s *SQLiteStore) CountPhotoGalleries(ctx context.Context, photoID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.GalleryPhoto{}).
		Where("photo_id = ?", photoID).
		Count(&count).Error
	return count, err
}

// Post operations

func (s *SQLiteStore) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *SQLiteStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *SQLiteStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *SQLiteStore) UpdatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Save(post).Error
}

func (s *SQLiteStore) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (s *SQLiteStore) ListPublishedPosts(ctx context.Context, now time.Time, kind PostKind, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	query := s.publishedQuery(ctx, now, kind).
		Order("publish_at DESC, updated_at DESC, created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&posts).Error
	return posts, err
}

func (s *SQLiteStore) CountPublishedPosts(ctx context.Context, now time.Time, kind PostKind) (int64, error) {
	var count int64
	err := s.publishedQuery(ctx, now, kind).Count(&count).Error
	return count, err
}

func (s *SQLiteStore) publishedQuery(ctx context.Context, now time.Time, kind PostKind) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("active = ? AND publish_at <= ?", true, now.UTC())

	switch kind {
	case WritingPosts:
		query = query.Where("gallery_id IS NULL")
	case GalleryPosts:
		query = query.Where("gallery_id IS NOT NULL")
	}

	return query
}

func (s *SQLiteStore) UnlinkGalleryPosts(ctx context.Context, galleryID uint) error {
	return s.db.WithContext(ctx).Model(&models.Post{}).
		Where("gallery_id = ?", galleryID).
		Update("gallery_id", nil).Error
}

// Submission operations

func (s *SQLiteStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SQLiteStore) DeleteSubmission(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Submission{}, "id = ?", id).Error
}
