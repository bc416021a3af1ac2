package blog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/log"
)

var now = time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "blog.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()
	if err := st.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect store: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, 5, log.NewNopLogger())
	svc.now = func() time.Time { return now }
	return svc, st
}

func savePost(t *testing.T, svc *Service, title string, publishAt time.Time, active bool) *models.Post {
	t.Helper()

	post := &models.Post{
		Entry:     models.Entry{Title: title, Active: active},
		PublishAt: publishAt,
	}
	if err := svc.SavePost(context.Background(), post); err != nil {
		t.Fatalf("SavePost %q failed: %v", title, err)
	}
	return post
}

func TestListPublishedPaging(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	for i := 0; i < 7; i++ {
		savePost(t, svc, fmt.Sprintf("Post %d", i), now.Add(-time.Duration(i)*time.Hour), true)
	}
	savePost(t, svc, "Scheduled", now.Add(time.Hour), true)
	savePost(t, svc, "Draft", now.Add(-time.Hour), false)

	tests := []struct {
		name    string
		page    int
		number  int
		count   int
		first   string
		hasNext bool
		hasPrev bool
	}{
		{"first", 1, 1, 5, "Post 0", true, false},
		{"second", 2, 2, 2, "Post 5", false, true},
		{"out of range", 9, 2, 2, "Post 5", false, true},
		{"below range", 0, 1, 5, "Post 0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListPublished(ctx, tt.page)
			if err != nil {
				t.Fatalf("ListPublished failed: %v", err)
			}
			if page.Number != tt.number || page.Total != 2 {
				t.Errorf("Expected page %d of 2, got %d of %d", tt.number, page.Number, page.Total)
			}
			if len(page.Posts) != tt.count {
				t.Fatalf("Expected %d posts, got %d", tt.count, len(page.Posts))
			}
			if page.Posts[0].Title != tt.first {
				t.Errorf("Expected first post %q, got %q", tt.first, page.Posts[0].Title)
			}
			if page.HasNext != tt.hasNext || page.HasPrev != tt.hasPrev {
				t.Errorf("Unexpected navigation next=%v prev=%v", page.HasNext, page.HasPrev)
			}
		})
	}
}

func TestListPublishedEmpty(t *testing.T) {
	svc, _ := setupService(t)

	page, err := svc.ListPublished(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if page.Number != 1 || page.Total != 1 || len(page.Posts) != 0 {
		t.Errorf("Unexpected empty page %+v", page)
	}
}

func TestPublishedAndPreview(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	savePost(t, svc, "Hello World", now.Add(-time.Minute), true)
	savePost(t, svc, "Coming Soon", now.Add(time.Hour), true)

	post, err := svc.Published(ctx, "hello-world")
	if err != nil {
		t.Fatalf("Published failed: %v", err)
	}
	if post.Title != "Hello World" {
		t.Errorf("Unexpected post %q", post.Title)
	}

	if _, err := svc.Published(ctx, "coming-soon"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected scheduled post to be hidden, got %v", err)
	}
	if _, err := svc.Preview(ctx, "coming-soon"); err != nil {
		t.Errorf("Expected preview to show scheduled post, got %v", err)
	}
	if _, err := svc.Preview(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestWritingAndGalleries(t *testing.T) {
	ctx := context.Background()
	svc, st := setupService(t)

	gallery := &models.Gallery{Entry: models.Entry{Title: "Alps", Active: true}}
	if err := st.CreateGallery(ctx, gallery); err != nil {
		t.Fatalf("CreateGallery failed: %v", err)
	}

	savePost(t, svc, "Essay", now.Add(-time.Hour), true)
	photoPost := &models.Post{
		Entry:     models.Entry{Title: "Alps Trip", Active: true},
		PublishAt: now.Add(-time.Hour),
		GalleryID: &gallery.ID,
	}
	if err := svc.SavePost(ctx, photoPost); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	writing, err := svc.Writing(ctx)
	if err != nil || len(writing) != 1 || writing[0].Slug != "essay" {
		t.Errorf("Unexpected writing list %v (err=%v)", writing, err)
	}
	galleries, err := svc.Galleries(ctx)
	if err != nil || len(galleries) != 1 || galleries[0].Slug != "alps-trip" {
		t.Errorf("Unexpected gallery list %v (err=%v)", galleries, err)
	}

	post, err := svc.Published(ctx, "alps-trip")
	if err != nil {
		t.Fatalf("Published failed: %v", err)
	}
	if post.Gallery == nil || post.Gallery.Title != "Alps" {
		t.Errorf("Expected gallery to be loaded, got %+v", post.Gallery)
	}
}

func TestSavePost(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	post := savePost(t, svc, "  Über Café  ", time.Time{}, true)
	if post.Slug != "uber-cafe" {
		t.Errorf("Expected slug uber-cafe, got %q", post.Slug)
	}
	if !post.PublishAt.Equal(now) {
		t.Errorf("Expected publish date to default to now, got %v", post.PublishAt)
	}

	post.Body = "updated"
	if err := svc.SavePost(ctx, post); err != nil {
		t.Fatalf("SavePost update failed: %v", err)
	}
	loaded, err := svc.Preview(ctx, "uber-cafe")
	if err != nil || loaded.Body != "updated" {
		t.Errorf("Expected updated body, got %+v (err=%v)", loaded, err)
	}

	if err := svc.SavePost(ctx, &models.Post{}); !errors.Is(err, ErrInvalidPost) {
		t.Errorf("Expected ErrInvalidPost, got %v", err)
	}
	bad := &models.Post{Entry: models.Entry{Title: "Bad"}, Slug: "Not A Slug"}
	if err := svc.SavePost(ctx, bad); !errors.Is(err, ErrInvalidPost) {
		t.Errorf("Expected ErrInvalidPost for bad slug, got %v", err)
	}
	missing := uint(77)
	orphan := &models.Post{Entry: models.Entry{Title: "Orphan"}, GalleryID: &missing}
	if err := svc.SavePost(ctx, orphan); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown gallery, got %v", err)
	}

	if err := svc.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if err := svc.DeletePost(ctx, post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCoverPhoto(t *testing.T) {
	ctx := context.Background()
	svc, st := setupService(t)

	gallery := &models.Gallery{Entry: models.Entry{Title: "Covers", Active: true}}
	if err := st.CreateGallery(ctx, gallery); err != nil {
		t.Fatalf("CreateGallery failed: %v", err)
	}

	if _, err := svc.CoverPhoto(ctx, gallery.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for empty gallery, got %v", err)
	}

	for i, size := range [][2]int{{3, 4}, {8, 5}} {
		photo := &models.Photo{
			Entry:  models.Entry{Title: fmt.Sprintf("Cover %02d", i+1), Active: true},
			Path:   fmt.Sprintf("galleries/photos/cover-%d.png", i),
			Width:  size[0],
			Height: size[1],
		}
		if err := st.CreatePhoto(ctx, photo); err != nil {
			t.Fatalf("CreatePhoto failed: %v", err)
		}
		if err := st.AttachPhoto(ctx, gallery.ID, photo.ID); err != nil {
			t.Fatalf("AttachPhoto failed: %v", err)
		}
	}

	cover, err := svc.CoverPhoto(ctx, gallery.ID)
	if err != nil {
		t.Fatalf("CoverPhoto failed: %v", err)
	}
	if cover.Title != "Cover 02" {
		t.Errorf("Expected the landscape photo, got %q", cover.Title)
	}
}
