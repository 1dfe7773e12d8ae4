package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
	"github.com/spots-occitanie/internal/pkg/geo"
	"github.com/spots-occitanie/internal/usecase/dto"
)

// EnrichmentUseCase fills in addresses, elevations and departments for
// spots that miss them. BAN answers first; Nominatim is the fallback for
// points outside the address base. Geocoding responses are cached so
// re-running a pass does not re-ask the public APIs.
type EnrichmentUseCase struct {
	spotRepo      repository.SpotRepository
	banRepo       repository.GeocodeRepository
	nominatimRepo repository.GeocodeRepository
	elevationRepo repository.ElevationRepository
	cacheRepo     repository.CacheRepository
	logger        *zap.Logger
	cacheTTL      time.Duration
	batchSize     int
}

func NewEnrichmentUseCase(
	spotRepo repository.SpotRepository,
	banRepo repository.GeocodeRepository,
	nominatimRepo repository.GeocodeRepository,
	elevationRepo repository.ElevationRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
	batchSize int,
) *EnrichmentUseCase {
	if batchSize < 1 {
		batchSize = 50
	}
	return &EnrichmentUseCase{
		spotRepo:      spotRepo,
		banRepo:       banRepo,
		nominatimRepo: nominatimRepo,
		elevationRepo: elevationRepo,
		cacheRepo:     cacheRepo,
		logger:        logger,
		cacheTTL:      cacheTTL,
		batchSize:     batchSize,
	}
}

// EnrichAddresses reverse-geocodes spots without an address, starting
// past afterID. A geocoder miss on both providers counts as a miss, not
// a failure; the spot stays untouched so a later run with better data
// can fill it, and the returned LastID lets the caller page past it
// within this run.
func (uc *EnrichmentUseCase) EnrichAddresses(ctx context.Context, afterID int64, limit int, onSpot func()) (*dto.EnrichmentReport, error) {
	report := &dto.EnrichmentReport{RunID: uuid.NewString(), Kind: "address", LastID: afterID}

	spots, err := uc.spotRepo.ListMissingAddress(ctx, afterID, limit)
	if err != nil {
		return nil, err
	}

	for _, spot := range spots {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		report.LastID = spot.ID

		addr, err := uc.resolveAddress(ctx, spot.Lat, spot.Lon)
		if err != nil {
			report.Failed++
			uc.logger.Warn("Failed to geocode spot",
				zap.Int64("id", spot.ID),
				zap.Error(err))
			continue
		}
		if addr == nil {
			report.Misses++
			uc.logger.Debug("No address for spot", zap.Int64("id", spot.ID))
			continue
		}

		if err := uc.spotRepo.UpdateAddress(ctx, spot.ID, addr); err != nil {
			report.Failed++
			continue
		}

		// a postcode settles the department for free
		if spot.Department == nil || *spot.Department == "" {
			if dep := geo.DepartmentFromPostcode(addr.Postcode); dep != "" {
				if err := uc.spotRepo.UpdateDepartment(ctx, spot.ID, dep); err != nil {
					uc.logger.Warn("Failed to set department",
						zap.Int64("id", spot.ID), zap.Error(err))
				}
			}
		}

		report.Updated++
		if onSpot != nil {
			onSpot()
		}
	}

	uc.logReport(report)
	return report, nil
}

// EnrichElevations resolves elevations in batches via the altimetry API,
// starting past afterID.
func (uc *EnrichmentUseCase) EnrichElevations(ctx context.Context, afterID int64, limit int, onSpot func()) (*dto.EnrichmentReport, error) {
	report := &dto.EnrichmentReport{RunID: uuid.NewString(), Kind: "elevation", LastID: afterID}

	spots, err := uc.spotRepo.ListMissingElevation(ctx, afterID, limit)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(spots); start += uc.batchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := start + uc.batchSize
		if end > len(spots) {
			end = len(spots)
		}
		batch := spots[start:end]

		points := make([]domain.Point, len(batch))
		for i, s := range batch {
			points[i] = domain.Point{Lat: s.Lat, Lon: s.Lon}
		}

		elevations, err := uc.elevationRepo.Elevations(ctx, points)
		if err != nil {
			report.Failed += len(batch)
			report.Processed += len(batch)
			report.LastID = batch[len(batch)-1].ID
			uc.logger.Warn("Elevation batch failed",
				zap.Int("size", len(batch)), zap.Error(err))
			continue
		}

		for i, s := range batch {
			report.Processed++
			report.LastID = s.ID
			if math.IsNaN(elevations[i]) {
				report.Misses++
				continue
			}
			if err := uc.spotRepo.UpdateElevation(ctx, s.ID, elevations[i]); err != nil {
				report.Failed++
				continue
			}
			report.Updated++
			if onSpot != nil {
				onSpot()
			}
		}
	}

	uc.logReport(report)
	return report, nil
}

// EnrichDepartments infers the department from the stored postcode or
// address, falling back to coordinate boxes. Like the other passes it
// pages past afterID.
func (uc *EnrichmentUseCase) EnrichDepartments(ctx context.Context, afterID int64, limit int, onSpot func()) (*dto.EnrichmentReport, error) {
	report := &dto.EnrichmentReport{RunID: uuid.NewString(), Kind: "department", LastID: afterID}

	spots, err := uc.spotRepo.ListMissingDepartment(ctx, afterID, limit)
	if err != nil {
		return nil, err
	}

	for _, spot := range spots {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		report.LastID = spot.ID

		dep := ""
		if spot.Postcode != nil {
			dep = geo.DepartmentFromPostcode(*spot.Postcode)
		}
		if dep == "" && spot.Address != nil {
			dep = geo.DepartmentFromPostcode(*spot.Address)
		}
		if dep == "" {
			dep = geo.DepartmentFromCoordinates(spot.Lat, spot.Lon)
		}
		if dep == "" {
			report.Misses++
			continue
		}

		if err := uc.spotRepo.UpdateDepartment(ctx, spot.ID, dep); err != nil {
			report.Failed++
			continue
		}
		report.Updated++
		if onSpot != nil {
			onSpot()
		}
	}

	uc.logReport(report)
	return report, nil
}

// resolveAddress tries the cache, then BAN, then Nominatim.
func (uc *EnrichmentUseCase) resolveAddress(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return nil, apperrors.ErrInvalidCoordinates
	}

	cacheKey := fmt.Sprintf("geocode:%.5f:%.5f", lat, lon)

	if uc.cacheRepo != nil {
		if cached, err := uc.cacheRepo.Get(ctx, cacheKey); err == nil && cached != nil {
			var addr domain.Address
			if err := json.Unmarshal(cached, &addr); err == nil {
				return &addr, nil
			}
		}
	}

	addr, err := uc.banRepo.Reverse(ctx, lat, lon)
	if err != nil {
		uc.logger.Warn("BAN reverse failed, trying Nominatim", zap.Error(err))
	}
	if addr == nil {
		addr, err = uc.nominatimRepo.Reverse(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
	}
	if addr == nil {
		return nil, nil
	}

	if uc.cacheRepo != nil {
		if data, err := json.Marshal(addr); err == nil {
			if err := uc.cacheRepo.Set(ctx, cacheKey, data, uc.cacheTTL); err != nil {
				uc.logger.Debug("Failed to cache geocode result", zap.Error(err))
			}
		}
	}

	return addr, nil
}

func (uc *EnrichmentUseCase) logReport(r *dto.EnrichmentReport) {
	uc.logger.Info("Enrichment pass finished",
		zap.String("run_id", r.RunID),
		zap.String("kind", r.Kind),
		zap.Int("processed", r.Processed),
		zap.Int("updated", r.Updated),
		zap.Int("misses", r.Misses),
		zap.Int("failed", r.Failed))
}
