package models

import "time"

// Submission is a transient archive upload waiting to be ingested into a gallery
type Submission struct {
	ID          string `gorm:"primaryKey;type:text"`
	ArchivePath string `gorm:"type:text;not null"`
	GalleryID   *uint  `gorm:"index"`
	Title       string `gorm:"type:text;not null"`

	CreatedAt time.Time
}
