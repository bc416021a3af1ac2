package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/db/store"
)

// Ingest submits archive and processes it immediately. galleryID selects an
// existing gallery; nil creates a new one named title.
//
// A non-nil report may come back together with a *CleanupError.
func (s *Service) Ingest(ctx context.Context, archive io.Reader, galleryID *uint, title string) (*Report, error) {
	submission, err := s.Submit(ctx, archive, galleryID, title)
	if err != nil {
		return nil, err
	}
	return s.Process(ctx, submission.ID)
}

// Submit stores the archive in scratch storage and records the submission.
func (s *Service) Submit(ctx context.Context, archive io.Reader, galleryID *uint, title string) (*models.Submission, error) {
	if err := s.validateTitle(title); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	id := s.newID()
	submission := &models.Submission{
		ID:          id,
		ArchivePath: path.Join(s.cfg.ArchivePrefix, id+".zip"),
		GalleryID:   galleryID,
		Title:       title,
	}

	opts := blob.PutOptions{ContentType: "application/zip"}
	if err := s.scratch.Put(ctx, submission.ArchivePath, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return nil, fmt.Errorf("failed to store archive: %w", err)
	}

	if err := s.store.CreateSubmission(ctx, submission); err != nil {
		if derr := s.scratch.Delete(ctx, submission.ArchivePath); derr != nil {
			s.log.Warn("Failed to remove unrecorded archive %s: %v", submission.ArchivePath, derr)
		}
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	s.log.Debug("Stored submission %s (%d bytes) at %s", id, len(data), submission.ArchivePath)
	return submission, nil
}

// Process ingests a stored submission and always discards it afterwards.
func (s *Service) Process(ctx context.Context, id string) (report *Report, err error) {
	submission, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %s: %w", id, err)
	}

	defer func() {
		cleanupErr := s.discard(context.WithoutCancel(ctx), submission)
		if cleanupErr == nil {
			return
		}
		if err != nil {
			s.log.Error("Failed to discard submission %s after error: %v", id, cleanupErr)
			return
		}
		err = cleanupErr
	}()

	data, err := s.scratch.Get(ctx, submission.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission %s: %w", id, err)
	}

	return s.ingest(ctx, data, submission.GalleryID, submission.Title)
}

func (s *Service) discard(ctx context.Context, submission *models.Submission) error {
	var errs []error
	if err := s.scratch.Delete(ctx, submission.ArchivePath); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.DeleteSubmission(ctx, submission.ID); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &CleanupError{Submission: submission.ID, Err: errors.Join(errs...)}
	}
	return nil
}

func (s *Service) ingest(ctx context.Context, data []byte, galleryID *uint, title string) (*Report, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ArchiveCorruptError{Err: err}
	}

	files := make([]*zip.File, len(zr.File))
	copy(files, zr.File)
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	if err := verifyArchive(files); err != nil {
		return nil, err
	}

	gallery, err := s.resolveGallery(ctx, galleryID, title)
	if err != nil {
		return nil, err
	}

	report := &Report{Gallery: gallery}
	seq := 0

	for _, f := range files {
		if f.FileInfo().IsDir() || s.reserved(f.Name) || memberBase(f.Name) == "" {
			report.add(MemberResult{Name: f.Name, Status: StatusIgnored})
			continue
		}

		content, err := readMember(f)
		if err != nil {
			return report, &ArchiveCorruptError{Member: f.Name, Err: err}
		}
		if len(content) == 0 {
			report.add(MemberResult{Name: f.Name, Status: StatusEmpty})
			continue
		}

		seq++
		name := displayName(title, seq)

		result, err := s.ingestMember(ctx, gallery, f.Name, content, name)
		if err != nil {
			var decodeErr *ImageDecodeError
			if errors.As(err, &decodeErr) && !s.cfg.FailFast {
				s.log.Warn("Skipping %s: %v", f.Name, decodeErr.Err)
				report.add(MemberResult{Name: f.Name, Status: StatusSkipped, DisplayName: name, Err: err})
				continue
			}
			return report, err
		}
		report.add(result)
	}

	s.log.Info("Ingested archive into gallery %d (%q): %d created, %d reused, %d skipped",
		gallery.ID, gallery.Title, len(report.Created()), len(report.Reused()), len(report.Skipped()))

	return report, nil
}

func (s *Service) ingestMember(ctx context.Context, gallery *models.Gallery, member string, data []byte, name string) (MemberResult, error) {
	img, err := decodeImage(data, s.cfg.MaxPixels)
	if err != nil {
		return MemberResult{}, &ImageDecodeError{Member: member, Err: err}
	}

	existing, err := s.store.GetPhotoByTitle(ctx, name)
	switch {
	case err == nil:
		attached, err := s.store.IsAttached(ctx, gallery.ID, existing.ID)
		if err != nil {
			return MemberResult{}, fmt.Errorf("failed to check photo %d: %w", existing.ID, err)
		}
		if !attached {
			if err := s.store.AttachPhoto(ctx, gallery.ID, existing.ID); err != nil {
				return MemberResult{}, fmt.Errorf("failed to attach photo %d: %w", existing.ID, err)
			}
		}
		s.log.Debug("Reusing photo %d for %s as %q", existing.ID, member, name)
		return MemberResult{Name: member, Status: StatusReused, DisplayName: name, PhotoID: existing.ID}, nil

	case !errors.Is(err, store.ErrNotFound):
		return MemberResult{}, fmt.Errorf("failed to look up photo %q: %w", name, err)
	}

	photo, err := s.storePhoto(ctx, member, data, img, name)
	if err != nil {
		return MemberResult{}, err
	}

	if err := s.store.AttachPhoto(ctx, gallery.ID, photo.ID); err != nil {
		return MemberResult{}, fmt.Errorf("failed to attach photo %d: %w", photo.ID, err)
	}

	return MemberResult{Name: member, Status: StatusCreated, DisplayName: name, PhotoID: photo.ID}, nil
}

// storePhoto writes the bytes under a date namespaced key and creates the record.
func (s *Service) storePhoto(ctx context.Context, member string, data []byte, img *decodedImage, title string) (*models.Photo, error) {
	key, err := s.availableKey(ctx, member)
	if err != nil {
		return nil, err
	}

	opts := blob.PutOptions{ContentType: img.ContentType()}
	if err := s.photos.Put(ctx, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", member, err)
	}

	photo := &models.Photo{
		Entry:       models.Entry{Title: title, Active: true},
		Path:        key,
		Width:       img.Width,
		Height:      img.Height,
		Size:        int64(len(data)),
		ContentType: img.ContentType(),
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		if derr := s.photos.Delete(ctx, key); derr != nil {
			s.log.Warn("Failed to remove orphaned blob %s: %v", key, derr)
		}
		return nil, fmt.Errorf("failed to create photo %q: %w", title, err)
	}
	return photo, nil
}

// availableKey returns galleries/photos/YYYY/MM/DD/<file>, adding a numeric
// suffix when that key is already taken.
func (s *Service) availableKey(ctx context.Context, member string) (string, error) {
	dir := path.Join(s.cfg.PhotoPrefix, s.now().Format("2006/01/02"))
	base := memberBase(member)
	if base == "" {
		return "", fmt.Errorf("member %q has no usable file name", member)
	}
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	key := path.Join(dir, base)
	for i := 1; ; i++ {
		exists, err := s.photos.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", key, err)
		}
		if !exists {
			return key, nil
		}
		key = path.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

// memberBase is the last path element of an archive member, or "" when that
// element cannot name a file of its own.
func memberBase(member string) string {
	base := path.Base(strings.ReplaceAll(member, "\\", "/"))
	switch base {
	case ".", "..", "/":
		return ""
	}
	return base
}

func (s *Service) resolveGallery(ctx context.Context, galleryID *uint, title string) (*models.Gallery, error) {
	if galleryID != nil {
		gallery, err := s.store.GetGallery(ctx, *galleryID)
		if err != nil {
			return nil, fmt.Errorf("failed to load gallery %d: %w", *galleryID, err)
		}
		return gallery, nil
	}

	gallery := &models.Gallery{Entry: models.Entry{Title: title, Active: true}}
	if err := s.store.CreateGallery(ctx, gallery); err != nil {
		return nil, fmt.Errorf("failed to create gallery %q: %w", title, err)
	}
	return gallery, nil
}

func (s *Service) reserved(name string) bool {
	for _, prefix := range s.cfg.ReservedPrefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// verifyArchive reads every member so CRC and format errors surface before
// anything is written.
func verifyArchive(files []*zip.File) error {
	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			return &ArchiveCorruptError{Member: f.Name, Err: err}
		}
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return &ArchiveCorruptError{Member: f.Name, Err: err}
		}
	}
	return nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func displayName(title string, seq int) string {
	return fmt.Sprintf("%s %02d", title, seq)
}
