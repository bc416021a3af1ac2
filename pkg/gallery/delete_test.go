package gallery

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/db/store"
)

func TestDeleteGalleryRemovesExclusivePhotos(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, testConfig())

	archive := buildArchive(t,
		member{name: "a.png", data: pngBytes(t, 3, 2)},
		member{name: "b.png", data: pngBytes(t, 2, 3)},
	)
	report, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Solo")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	galleryID := report.Gallery.ID

	post := &models.Post{
		Entry:     models.Entry{Title: "Holiday", Active: true},
		Slug:      "holiday",
		PublishAt: fixedNow,
		GalleryID: &galleryID,
	}
	if err := env.store.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	var paths []string
	for _, m := range report.Created() {
		photo, err := env.store.GetPhoto(ctx, m.PhotoID)
		if err != nil {
			t.Fatalf("GetPhoto failed: %v", err)
		}
		paths = append(paths, photo.Path)
	}

	deleted, err := env.svc.DeleteGallery(ctx, galleryID)
	if err != nil {
		t.Fatalf("DeleteGallery failed: %v", err)
	}
	if len(deleted.Deleted) != 2 || len(deleted.Detached) != 0 {
		t.Errorf("Expected 2 deleted and 0 detached, got %+v", deleted)
	}

	if _, err := env.store.GetGallery(ctx, galleryID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected gallery to be gone, got %v", err)
	}
	for _, m := range report.Created() {
		if _, err := env.store.GetPhoto(ctx, m.PhotoID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected photo %d to be gone, got %v", m.PhotoID, err)
		}
	}
	for _, p := range paths {
		if exists, _ := env.photos.Exists(ctx, p); exists {
			t.Errorf("Expected blob %s to be deleted", p)
		}
	}

	unlinked, err := env.store.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if unlinked.GalleryID != nil {
		t.Errorf("Expected post to lose its gallery, got %d", *unlinked.GalleryID)
	}
}

func TestDeleteGalleryKeepsSharedPhotos(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, testConfig())

	archive := buildArchive(t, member{name: "a.png", data: pngBytes(t, 4, 4)})
	first, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Shared")
	if err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	second, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Shared")
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}

	photoID := first.Members[0].PhotoID
	photo, err := env.store.GetPhoto(ctx, photoID)
	if err != nil {
		t.Fatalf("GetPhoto failed: %v", err)
	}

	deleted, err := env.svc.DeleteGallery(ctx, first.Gallery.ID)
	if err != nil {
		t.Fatalf("DeleteGallery failed: %v", err)
	}
	if len(deleted.Deleted) != 0 || len(deleted.Detached) != 1 || deleted.Detached[0] != photoID {
		t.Errorf("Expected photo %d to be detached only, got %+v", photoID, deleted)
	}

	if exists, _ := env.photos.Exists(ctx, photo.Path); !exists {
		t.Errorf("Expected shared blob %s to remain", photo.Path)
	}
	attached, err := env.store.IsAttached(ctx, second.Gallery.ID, photoID)
	if err != nil || !attached {
		t.Errorf("Expected photo to stay in second gallery (err=%v)", err)
	}
}

func TestDeleteGalleryRollsBackOnBlobFailure(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, testConfig())

	archive := buildArchive(t, member{name: "a.png", data: pngBytes(t, 4, 4)})
	report, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Fragile")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	svc := newTestService(testConfig(), env.store, failingDelete{env.photos}, env.scratch)
	if _, err := svc.DeleteGallery(ctx, report.Gallery.ID); err == nil {
		t.Fatalf("Expected DeleteGallery to fail")
	}

	if _, err := env.store.GetGallery(ctx, report.Gallery.ID); err != nil {
		t.Errorf("Expected gallery to survive, got %v", err)
	}
	photoID := report.Members[0].PhotoID
	if _, err := env.store.GetPhoto(ctx, photoID); err != nil {
		t.Errorf("Expected photo to survive, got %v", err)
	}
	attached, err := env.store.IsAttached(ctx, report.Gallery.ID, photoID)
	if err != nil || !attached {
		t.Errorf("Expected photo to stay attached (err=%v)", err)
	}
}

func TestDeleteGalleryNotFound(t *testing.T) {
	env := setupService(t, testConfig())

	if _, err := env.svc.DeleteGallery(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, testConfig())

	archive := buildArchive(t, member{name: "a.png", data: pngBytes(t, 4, 4)})
	first, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Gone")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	second, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Gone")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	photoID := first.Members[0].PhotoID
	photo, err := env.store.GetPhoto(ctx, photoID)
	if err != nil {
		t.Fatalf("GetPhoto failed: %v", err)
	}

	if err := env.svc.DeletePhoto(ctx, photoID); err != nil {
		t.Fatalf("DeletePhoto failed: %v", err)
	}

	for _, id := range []uint{first.Gallery.ID, second.Gallery.ID} {
		photos, err := env.store.ListGalleryPhotos(ctx, id)
		if err != nil {
			t.Fatalf("ListGalleryPhotos failed: %v", err)
		}
		if len(photos) != 0 {
			t.Errorf("Expected gallery %d to be empty, got %d photos", id, len(photos))
		}
	}
	if exists, _ := env.photos.Exists(ctx, photo.Path); exists {
		t.Errorf("Expected blob %s to be deleted", photo.Path)
	}
}

func TestDeleteGalleryLogsRemovedBlobsOnFailure(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, testConfig())

	archive := buildArchive(t,
		member{name: "a.png", data: pngBytes(t, 3, 2)},
		member{name: "b.png", data: pngBytes(t, 2, 3)},
	)
	report, err := env.svc.Ingest(ctx, bytes.NewReader(archive), nil, "Partial")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	var buf bytes.Buffer
	photos := &limitedDelete{Store: env.photos, n: 1}
	svc := newLoggedService(testConfig(), env.store, photos, env.scratch, bufferLogger(&buf))
	if _, err := svc.DeleteGallery(ctx, report.Gallery.ID); err == nil {
		t.Fatalf("Expected DeleteGallery to fail")
	}

	if _, err := env.store.GetGallery(ctx, report.Gallery.ID); err != nil {
		t.Errorf("Expected gallery to survive, got %v", err)
	}

	var removed int
	for _, m := range report.Created() {
		photo, err := env.store.GetPhoto(ctx, m.PhotoID)
		if err != nil {
			t.Fatalf("Expected photo %d to survive, got %v", m.PhotoID, err)
		}
		if exists, _ := env.photos.Exists(ctx, photo.Path); exists {
			continue
		}
		removed++
		if !strings.Contains(buf.String(), photo.Path) {
			t.Errorf("Expected removed blob %s to be logged, got %q", photo.Path, buf.String())
		}
	}
	if removed != 1 {
		t.Errorf("Expected exactly one removed blob, got %d", removed)
	}
}
