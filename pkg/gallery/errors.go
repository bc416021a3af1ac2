package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTitle is returned for empty or overlong batch titles.
	ErrInvalidTitle = errors.New("invalid title")
	// ErrTitleTaken is returned when a single photo upload reuses an existing display name.
	ErrTitleTaken = errors.New("photo title already in use")
)

// ArchiveCorruptError aborts an ingestion before anything is written.
// Member is empty when the upload is not a zip container at all.
type ArchiveCorruptError struct {
	Member string
	Err    error
}

func (e *ArchiveCorruptError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("archive is not a readable zip file: %v", e.Err)
	}
	return fmt.Sprintf("archive member %q is corrupt: %v", e.Member, e.Err)
}

func (e *ArchiveCorruptError) Unwrap() error {
	return e.Err
}

// ImageDecodeError marks a member whose bytes are not a complete image.
type ImageDecodeError struct {
	Member string
	Err    error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("member %q is not a valid image: %v", e.Member, e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

// CleanupError reports that a submission could not be discarded after the
// gallery was already updated. The ingestion itself is not rolled back.
type CleanupError struct {
	Submission string
	Err        error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("failed to discard submission %s: %v", e.Submission, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
