package models

import "time"

// Gallery is a named collection of photos
type Gallery struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Entry

	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Photos []Photo `gorm:"-" json:"photos,omitempty"`
}

// GalleryPhoto links photos to galleries; a photo may be shared between galleries
type GalleryPhoto struct {
	GalleryID uint `gorm:"primaryKey;autoIncrement:false"`
	PhotoID   uint `gorm:"primaryKey;autoIncrement:false;index"`

	CreatedAt time.Time
}

func (GalleryPhoto) TableName() string {
	return "gallery_photos"
}
