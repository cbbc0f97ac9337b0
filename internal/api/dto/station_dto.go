package dto

// StationRequest payload for creating or updating a station marker.
type StationRequest struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Active     *bool   `json:"active,omitempty"`
}

// MarkerResponse is a map marker. Air-quality readings are fetched from the
// external provider by the client, keyed on ExternalID.
type MarkerResponse struct {
	ID         int64   `json:"id"`
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}
