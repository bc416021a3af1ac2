package models

// Photo is a stored image. Title acts as the display name.
type Photo struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Entry

	Path        string `gorm:"type:text;not null" json:"path"`
	Width       int    `gorm:"not null"           json:"width"`
	Height      int    `gorm:"not null"           json:"height"`
	Size        int64  `gorm:"not null"           json:"size"`
	ContentType string `gorm:"type:text"          json:"content_type"`
}

// Landscape reports whether the photo is wider than tall.
func (p *Photo) Landscape() bool {
	return p.Width > p.Height
}
