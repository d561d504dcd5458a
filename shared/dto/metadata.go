package dto

import (
	"roomsense/shared/constant"
	"roomsense/shared/model"
	"roomsense/shared/timezone"
	"time"
)

type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at,omitempty"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return constant.Empty
	}

	return timezone.Format(t, constant.DateFormat)
}

// FromModel renders audit timestamps in the app time zone. A record that was
// never modified keeps ModifiedAt empty.
func (m *Metadata) FromModel(meta model.Metadata) {
	m.CreatedAt = formatInstant(meta.CreatedAt)
	m.ModifiedAt = formatInstant(meta.ModifiedAt)
	m.CreatedBy = meta.CreatedBy
	m.ModifiedBy = meta.ModifiedBy
}
