package gallery

import "github.com/mwantia/wind/pkg/db/models"

type MemberStatus string

const (
	StatusCreated MemberStatus = "created"
	StatusReused  MemberStatus = "reused"
	StatusSkipped MemberStatus = "skipped"
	StatusEmpty   MemberStatus = "empty"
	StatusIgnored MemberStatus = "ignored"
)

// MemberResult is the outcome for one archive member.
type MemberResult struct {
	Name        string       `json:"name"`
	Status      MemberStatus `json:"status"`
	DisplayName string       `json:"display_name,omitempty"`
	PhotoID     uint         `json:"photo_id,omitempty"`
	Err         error        `json:"-"`
}

// Report summarizes one ingestion run in sorted member order.
type Report struct {
	Gallery *models.Gallery `json:"gallery"`
	Members []MemberResult  `json:"members"`
}

func (r *Report) add(result MemberResult) {
	r.Members = append(r.Members, result)
}

func (r *Report) filter(status MemberStatus) []MemberResult {
	var out []MemberResult
	for _, m := range r.Members {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

func (r *Report) Created() []MemberResult {
	return r.filter(StatusCreated)
}

func (r *Report) Reused() []MemberResult {
	return r.filter(StatusReused)
}

// Skipped returns the names of members that failed image validation.
func (r *Report) Skipped() []string {
	var names []string
	for _, m := range r.filter(StatusSkipped) {
		names = append(names, m.Name)
	}
	return names
}

// DisplayNames lists the names assigned to created or reused photos.
func (r *Report) DisplayNames() []string {
	var names []string
	for _, m := range r.Members {
		if m.Status == StatusCreated || m.Status == StatusReused {
			names = append(names, m.DisplayName)
		}
	}
	return names
}

// DeleteReport lists what a gallery deletion removed and what it only detached.
type DeleteReport struct {
	GalleryID uint   `json:"gallery_id"`
	Deleted   []uint `json:"deleted_photos"`
	Detached  []uint `json:"detached_photos"`
}
