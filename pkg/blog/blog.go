// Package blog serves published posts, previews and gallery covers.
package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/log"
)

const DefaultPageSize = 5

// ErrInvalidPost is returned by SavePost for posts missing a title or slug.
var ErrInvalidPost = errors.New("invalid post")

// Page is one slice of the published post listing. Number starts at 1.
type Page struct {
	Posts   []models.Post `json:"posts"`
	Number  int           `json:"number"`
	Total   int           `json:"total"`
	HasNext bool          `json:"has_next"`
	HasPrev bool          `json:"has_prev"`
}

type Service struct {
	store    store.GalleryStore
	log      log.LoggerService
	pageSize int

	now func() time.Time
}

func NewService(st store.GalleryStore, pageSize int, logger log.LoggerService) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Service{
		store:    st,
		log:      logger.Named("blog"),
		pageSize: pageSize,
		now:      time.Now,
	}
}

// ListPublished returns the requested page of published posts. Pages past
// the end resolve to the last page, pages below 1 to the first.
func (s *Service) ListPublished(ctx context.Context, number int) (*Page, error) {
	now := s.now()

	count, err := s.store.CountPublishedPosts(ctx, now, store.AnyPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	total := int((count + int64(s.pageSize) - 1) / int64(s.pageSize))
	if total < 1 {
		total = 1
	}
	if number < 1 {
		number = 1
	}
	if number > total {
		number = total
	}

	posts, err := s.store.ListPublishedPosts(ctx, now, store.AnyPosts, s.pageSize, (number-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &Page{
		Posts:   posts,
		Number:  number,
		Total:   total,
		HasNext: number < total,
		HasPrev: number > 1,
	}, nil
}

// Recent returns up to limit published posts, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	return s.store.ListPublishedPosts(ctx, s.now(), store.AnyPosts, limit, 0)
}

// Writing lists published posts without a gallery.
func (s *Service) Writing(ctx context.Context) ([]models.Post, error) {
	return s.store.ListPublishedPosts(ctx, s.now(), store.WritingPosts, 0, 0)
}

// Galleries lists published posts presenting a gallery.
func (s *Service) Galleries(ctx context.Context) ([]models.Post, error) {
	return s.store.ListPublishedPosts(ctx, s.now(), store.GalleryPosts, 0, 0)
}

// Published looks up a post by slug and hides inactive or scheduled posts
// behind store.ErrNotFound.
func (s *Service) Published(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished(s.now()) {
		return nil, store.ErrNotFound
	}
	return s.withGallery(ctx, post)
}

// Preview returns a post regardless of its state.
func (s *Service) Preview(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.withGallery(ctx, post)
}

func (s *Service) withGallery(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.GalleryID == nil {
		return post, nil
	}

	gallery, err := s.store.GetGallery(ctx, *post.GalleryID)
	if errors.Is(err, store.ErrNotFound) {
		return post, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery of post %q: %w", post.Slug, err)
	}

	photos, err := s.store.ListGalleryPhotos(ctx, gallery.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos of gallery %d: %w", gallery.ID, err)
	}
	gallery.Photos = photos
	post.Gallery = gallery
	return post, nil
}

// SavePost creates or updates a post. An empty slug is derived from the title
// and an unset publish date defaults to now.
func (s *Service) SavePost(ctx context.Context, post *models.Post) error {
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}
	if !slug.IsSlug(post.Slug) {
		return fmt.Errorf("%w: %q is not a valid slug", ErrInvalidPost, post.Slug)
	}
	if post.PublishAt.IsZero() {
		post.PublishAt = s.now()
	}
	post.PublishAt = post.PublishAt.UTC().Truncate(time.Second)

	if post.GalleryID != nil {
		if _, err := s.store.GetGallery(ctx, *post.GalleryID); err != nil {
			return fmt.Errorf("failed to load gallery %d: %w", *post.GalleryID, err)
		}
	}
	post.Gallery = nil

	if post.ID == 0 {
		if err := s.store.CreatePost(ctx, post); err != nil {
			return fmt.Errorf("failed to create post %q: %w", post.Slug, err)
		}
		s.log.Info("Created post %d (%s)", post.ID, post.Slug)
		return nil
	}

	existing, err := s.store.GetPost(ctx, post.ID)
	if err != nil {
		return err
	}
	post.CreatedAt = existing.CreatedAt

	if err := s.store.UpdatePost(ctx, post); err != nil {
		return fmt.Errorf("failed to update post %d: %w", post.ID, err)
	}
	s.log.Info("Updated post %d (%s)", post.ID, post.Slug)
	return nil
}

func (s *Service) DeletePost(ctx context.Context, id uint) error {
	if _, err := s.store.GetPost(ctx, id); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, id)
}

// CoverPhoto picks a random landscape photo of a gallery.
func (s *Service) CoverPhoto(ctx context.Context, galleryID uint) (*models.Photo, error) {
	return s.store.RandomLandscapePhoto(ctx, galleryID)
}
