package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain/repository"
)

// SpotHandler exposes the spots table as GeoJSON so QGIS can load it as
// a vector layer next to the downloaded tiles.
type SpotHandler struct {
	spotRepo repository.SpotRepository
	logger   *zap.Logger
}

func NewSpotHandler(spotRepo repository.SpotRepository, logger *zap.Logger) *SpotHandler {
	return &SpotHandler{
		spotRepo: spotRepo,
		logger:   logger,
	}
}

// GetSpots answers /spots with a GeoJSON FeatureCollection.
func (h *SpotHandler) GetSpots(c *fiber.Ctx) error {
	spots, err := h.spotRepo.ListAll(c.Context())
	if err != nil {
		h.logger.Error("Failed to list spots", zap.Error(err))
		return c.Status(500).SendString("Failed to list spots")
	}

	fc := geojson.NewFeatureCollection()
	for _, s := range spots {
		f := geojson.NewFeature(orb.Point{s.Lon, s.Lat})
		f.Properties["id"] = s.ID
		f.Properties["name"] = s.Name
		f.Properties["category"] = s.Category
		if s.Address != nil {
			f.Properties["address"] = *s.Address
		}
		if s.Commune != nil {
			f.Properties["commune"] = *s.Commune
		}
		if s.Department != nil {
			f.Properties["department"] = *s.Department
		}
		if s.Elevation != nil {
			f.Properties["elevation"] = *s.Elevation
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		h.logger.Error("Failed to marshal spots", zap.Error(err))
		return c.Status(500).SendString("Failed to marshal spots")
	}

	c.Set("Content-Type", "application/geo+json")
	return c.Send(data)
}
