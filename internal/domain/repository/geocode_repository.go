package repository

import (
	"context"

	"github.com/spots-occitanie/internal/domain"
)

// GeocodeRepository reverse-geocodes coordinates into an address.
// A nil result with a nil error means the provider knows nothing about
// the point (common for mountain spots).
type GeocodeRepository interface {
	Reverse(ctx context.Context, lat, lon float64) (*domain.Address, error)
}

// ElevationRepository resolves ground elevation for a batch of points.
// The returned slice is parallel to the input; NaN marks missing data.
type ElevationRepository interface {
	Elevations(ctx context.Context, points []domain.Point) ([]float64, error)
}
