package models

import "time"

// Post represents a blog entry, optionally presenting a gallery
type Post struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Entry

	Slug      string    `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Body      string    `gorm:"type:text"                      json:"body"`
	PublishAt time.Time `gorm:"not null;index"                 json:"publish_at"`

	GalleryID *uint    `gorm:"index"                                          json:"gallery_id,omitempty"`
	Gallery   *Gallery `gorm:"foreignKey:GalleryID;constraint:OnDelete:SET NULL" json:"gallery,omitempty"`
}

// IsPublished reports whether the post is visible to the public at now.
func (p *Post) IsPublished(now time.Time) bool {
	return p.Active && !p.PublishAt.After(now)
}
