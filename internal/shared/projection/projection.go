package projection

import "time"

// Metadata captures persistence timestamps shared by stored records.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps a write at now, keeping the original creation time.
func (m Metadata) Touch(now time.Time) Metadata {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return m
}
