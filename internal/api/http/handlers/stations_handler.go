package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/HowsAir/server-sub001/internal/api/dto"
	"github.com/HowsAir/server-sub001/internal/domain"
	"github.com/HowsAir/server-sub001/internal/service"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

// StationsHandler exposes map marker endpoints.
type StationsHandler struct {
	stations *service.StationService
}

// NewStationsHandler constructs handler.
func NewStationsHandler(stations *service.StationService) *StationsHandler {
	return &StationsHandler{stations: stations}
}

// Markers handles GET /stations/markers.
func (h *StationsHandler) Markers(c *fiber.Ctx) error {
	stations, err := h.stations.ListMarkers(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}

	markers := make([]dto.MarkerResponse, 0, len(stations))
	for _, station := range stations {
		markers = append(markers, dto.MarkerResponse{
			ID:         station.ID,
			ExternalID: station.ExternalID,
			Name:       station.Name,
			Latitude:   station.Latitude,
			Longitude:  station.Longitude,
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"markers": markers}})
}

// Create handles POST /stations, admin only.
func (h *StationsHandler) Create(c *fiber.Ctx) error {
	var req dto.StationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	station := &domain.Station{
		ExternalID: req.ExternalID,
		Name:       req.Name,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Active:     true,
	}
	if req.Active != nil {
		station.Active = *req.Active
	}

	if err := h.stations.Create(c.Context(), station); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": station.ID}})
}

// Update handles PUT /stations/:id, admin only.
func (h *StationsHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid station id", nil)
	}

	var req dto.StationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	station, err := h.stations.Get(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	station.ExternalID = req.ExternalID
	station.Name = req.Name
	station.Latitude = req.Latitude
	station.Longitude = req.Longitude
	if req.Active != nil {
		station.Active = *req.Active
	}

	if err := h.stations.Update(c.Context(), station); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": station.ID}})
}

// Delete handles DELETE /stations/:id, admin only.
func (h *StationsHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid station id", nil)
	}

	if err := h.stations.Delete(c.Context(), id); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
