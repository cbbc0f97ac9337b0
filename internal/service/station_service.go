package service

import (
	"context"

	"github.com/HowsAir/server-sub001/internal/domain"
	"github.com/HowsAir/server-sub001/internal/repository"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

// StationService manages the monitoring station markers shown on the map.
// Measured air-quality values are fetched client-side from the external
// provider; this service only deals in marker metadata.
type StationService struct {
	stations repository.StationRepository
}

// NewStationService builds the service.
func NewStationService(stations repository.StationRepository) *StationService {
	return &StationService{stations: stations}
}

// ListMarkers returns the active stations for map rendering.
func (s *StationService) ListMarkers(ctx context.Context) ([]domain.Station, error) {
	return s.stations.ListActive(ctx)
}

// Get returns a single station.
func (s *StationService) Get(ctx context.Context, id int64) (*domain.Station, error) {
	return s.stations.GetByID(ctx, id)
}

// Create registers a new station marker.
func (s *StationService) Create(ctx context.Context, station *domain.Station) error {
	if station.Name == "" || station.ExternalID == "" {
		return apperrors.NewValidationError("name and external_id required", nil)
	}
	return s.stations.Create(ctx, station)
}

// Update modifies an existing station marker.
func (s *StationService) Update(ctx context.Context, station *domain.Station) error {
	if station.ID == 0 {
		return apperrors.NewValidationError("station id required", nil)
	}
	return s.stations.Update(ctx, station)
}

// Delete removes a station marker.
func (s *StationService) Delete(ctx context.Context, id int64) error {
	return s.stations.Delete(ctx, id)
}
