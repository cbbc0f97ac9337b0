package domain

import "time"

// Station is a fixed air-quality monitoring station shown as a map marker.
// Measured values come from the external provider and are not stored here.
type Station struct {
	ID         int64
	ExternalID string
	Name       string
	Latitude   float64
	Longitude  float64
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
