package repository

import (
	"context"

	"github.com/spots-occitanie/internal/domain"
)

// SpotRepository defines access to the spots table.
type SpotRepository interface {
	// EnsureSchema creates the spots table and indexes if missing.
	EnsureSchema(ctx context.Context) error

	// GetByID returns one spot.
	GetByID(ctx context.Context, id int64) (*domain.Spot, error)

	// ListAll returns every spot ordered by id.
	ListAll(ctx context.Context) ([]*domain.Spot, error)

	// ListMissingAddress returns spots with id greater than afterID that
	// lack an address, up to limit. Paging by id lets callers advance
	// past permanent misses instead of reselecting them.
	ListMissingAddress(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error)

	// ListMissingElevation returns spots with id greater than afterID
	// that lack an elevation, up to limit.
	ListMissingElevation(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error)

	// ListMissingDepartment returns spots with id greater than afterID
	// that lack a department, up to limit.
	ListMissingDepartment(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error)

	// UpdateAddress stores a geocoding result on a spot.
	UpdateAddress(ctx context.Context, id int64, addr *domain.Address) error

	// UpdateElevation stores an elevation on a spot.
	UpdateElevation(ctx context.Context, id int64, elevation float64) error

	// UpdateDepartment stores a department code on a spot.
	UpdateDepartment(ctx context.Context, id int64, department string) error

	// UpdateName rewrites a spot name (cleanup pass).
	UpdateName(ctx context.Context, id int64, name string) error

	// Delete removes a spot.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of spots.
	Count(ctx context.Context) (int, error)
}
