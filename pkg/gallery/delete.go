package gallery

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwantia/wind/pkg/db/store"
)

// DeleteGallery removes a gallery along with every photo it exclusively owns.
// Photos shared with other galleries are only detached. Record changes run in
// a single transaction; blob removal happens last inside it, so a failing
// blob delete rolls the records back. Blobs removed before the failure cannot
// be restored and are logged by key.
func (s *Service) DeleteGallery(ctx context.Context, id uint) (*DeleteReport, error) {
	report := &DeleteReport{GalleryID: id}

	err := s.store.Transaction(ctx, func(tx store.GalleryStore) error {
		if _, err := tx.GetGallery(ctx, id); err != nil {
			return err
		}

		photos, err := tx.ListGalleryPhotos(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list photos: %w", err)
		}

		var keys []string
		for _, photo := range photos {
			owners, err := tx.CountPhotoGalleries(ctx, photo.ID)
			if err != nil {
				return fmt.Errorf("failed to count owners of photo %d: %w", photo.ID, err)
			}
			if owners > 1 {
				report.Detached = append(report.Detached, photo.ID)
				continue
			}
			report.Deleted = append(report.Deleted, photo.ID)
			keys = append(keys, photo.Path)
		}

		if err := tx.ClearGallery(ctx, id); err != nil {
			return fmt.Errorf("failed to detach photos: %w", err)
		}
		if err := tx.UnlinkGalleryPosts(ctx, id); err != nil {
			return fmt.Errorf("failed to unlink posts: %w", err)
		}
		for _, photoID := range report.Deleted {
			if err := tx.DeletePhoto(ctx, photoID); err != nil {
				return fmt.Errorf("failed to delete photo %d: %w", photoID, err)
			}
		}
		if err := tx.DeleteGallery(ctx, id); err != nil {
			return fmt.Errorf("failed to delete gallery: %w", err)
		}

		for i, key := range keys {
			if err := s.photos.Delete(ctx, key); err != nil {
				if i > 0 {
					s.log.Error("Gallery %d kept its records but already lost blobs: %s", id, strings.Join(keys[:i], ", "))
				}
				return fmt.Errorf("failed to delete blob %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Deleted gallery %d: %d photos removed, %d detached", id, len(report.Deleted), len(report.Detached))
	return report, nil
}

// DeletePhoto removes a photo from every gallery, then deletes it and its blob.
func (s *Service) DeletePhoto(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx store.GalleryStore) error {
		photo, err := tx.GetPhoto(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DetachPhotoEverywhere(ctx, id); err != nil {
			return fmt.Errorf("failed to detach photo %d: %w", id, err)
		}
		if err := tx.DeletePhoto(ctx, id); err != nil {
			return fmt.Errorf("failed to delete photo %d: %w", id, err)
		}
		if err := s.photos.Delete(ctx, photo.Path); err != nil {
			return fmt.Errorf("failed to delete blob %s: %w", photo.Path, err)
		}
		return nil
	})
}
