package models

import "time"

// Entry holds the fields shared by posts, galleries and photos.
type Entry struct {
	Title  string `gorm:"type:text;not null;index" json:"title"`
	Active bool   `gorm:"not null"                 json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
