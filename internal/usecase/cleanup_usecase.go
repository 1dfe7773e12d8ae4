package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	"github.com/spots-occitanie/internal/pkg/geo"
	"github.com/spots-occitanie/internal/usecase/dto"
)

// CleanupUseCase runs the ad-hoc data-cleaning passes over the spots
// table. Every pass supports dry-run, which reports what would change
// without touching the database.
type CleanupUseCase struct {
	spotRepo repository.SpotRepository
	logger   *zap.Logger

	// spots closer than this are considered duplicates
	dedupRadiusKm float64
}

func NewCleanupUseCase(spotRepo repository.SpotRepository, logger *zap.Logger, dedupRadiusKm float64) *CleanupUseCase {
	if dedupRadiusKm <= 0 {
		dedupRadiusKm = 0.05 // 50 m
	}
	return &CleanupUseCase{
		spotRepo:      spotRepo,
		logger:        logger,
		dedupRadiusKm: dedupRadiusKm,
	}
}

// NormalizeNames trims and de-shouts spot names.
func (uc *CleanupUseCase) NormalizeNames(ctx context.Context, dryRun bool) (*dto.CleanupReport, error) {
	report := &dto.CleanupReport{Pass: "normalize-names", DryRun: dryRun}

	spots, err := uc.spotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, spot := range spots {
		report.Examined++
		clean := geo.NormalizeName(spot.Name)
		if clean == spot.Name || clean == "" {
			continue
		}

		uc.logger.Info("Renaming spot",
			zap.Int64("id", spot.ID),
			zap.String("from", spot.Name),
			zap.String("to", clean),
			zap.Bool("dry_run", dryRun))
		report.Changed++

		if dryRun {
			continue
		}
		if err := uc.spotRepo.UpdateName(ctx, spot.ID, clean); err != nil {
			return report, err
		}
	}

	return report, nil
}

// FixDepartments rewrites department codes that disagree with the
// postcode on the same row. The postcode wins: it came from a geocoder,
// the department was often typed by hand.
func (uc *CleanupUseCase) FixDepartments(ctx context.Context, dryRun bool) (*dto.CleanupReport, error) {
	report := &dto.CleanupReport{Pass: "fix-departments", DryRun: dryRun}

	spots, err := uc.spotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, spot := range spots {
		report.Examined++
		if spot.Postcode == nil || *spot.Postcode == "" {
			continue
		}
		want := geo.DepartmentFromPostcode(*spot.Postcode)
		if want == "" {
			continue
		}
		have := ""
		if spot.Department != nil {
			have = *spot.Department
		}
		if have == want {
			continue
		}

		uc.logger.Info("Fixing department",
			zap.Int64("id", spot.ID),
			zap.String("from", have),
			zap.String("to", want),
			zap.Bool("dry_run", dryRun))
		report.Changed++

		if dryRun {
			continue
		}
		if err := uc.spotRepo.UpdateDepartment(ctx, spot.ID, want); err != nil {
			return report, err
		}
	}

	return report, nil
}

// DropOutOfRegion deletes spots outside the Occitanie bounding box.
// They are usually GPS glitches or paste errors from other trips.
func (uc *CleanupUseCase) DropOutOfRegion(ctx context.Context, dryRun bool) (*dto.CleanupReport, error) {
	report := &dto.CleanupReport{Pass: "drop-out-of-region", DryRun: dryRun}

	spots, err := uc.spotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, spot := range spots {
		report.Examined++
		if geo.InOccitanie(spot.Lat, spot.Lon) {
			continue
		}

		uc.logger.Info("Dropping out-of-region spot",
			zap.Int64("id", spot.ID),
			zap.String("name", spot.Name),
			zap.Float64("lat", spot.Lat),
			zap.Float64("lon", spot.Lon),
			zap.Bool("dry_run", dryRun))
		report.Deleted++

		if dryRun {
			continue
		}
		if err := uc.spotRepo.Delete(ctx, spot.ID); err != nil {
			return report, err
		}
	}

	return report, nil
}

// Deduplicate removes near-identical spots. For each pair closer than
// the dedup radius the record with more filled fields survives; on a tie
// the lower id wins.
func (uc *CleanupUseCase) Deduplicate(ctx context.Context, dryRun bool) (*dto.CleanupReport, error) {
	report := &dto.CleanupReport{Pass: "deduplicate", DryRun: dryRun}

	spots, err := uc.spotRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	report.Examined = len(spots)

	doomed := make(map[int64]bool)
	for i := 0; i < len(spots); i++ {
		if doomed[spots[i].ID] {
			continue
		}
		for j := i + 1; j < len(spots); j++ {
			if doomed[spots[j].ID] {
				continue
			}
			d := geo.HaversineDistance(spots[i].Lat, spots[i].Lon, spots[j].Lat, spots[j].Lon)
			if d > uc.dedupRadiusKm {
				continue
			}

			loser := pickDuplicate(spots[i], spots[j])
			doomed[loser.ID] = true
			uc.logger.Info("Duplicate spot",
				zap.Int64("keep", otherOf(spots[i], spots[j], loser).ID),
				zap.Int64("drop", loser.ID),
				zap.Float64("distance_km", d),
				zap.Bool("dry_run", dryRun))

			// once doomed, spots[i] must not doom anything else; its
			// remaining neighbors get compared against the survivor
			// on a later outer iteration
			if loser == spots[i] {
				break
			}
		}
	}

	for id := range doomed {
		report.Deleted++
		if dryRun {
			continue
		}
		if err := uc.spotRepo.Delete(ctx, id); err != nil {
			return report, err
		}
	}

	return report, nil
}

// pickDuplicate returns the record to delete.
func pickDuplicate(a, b *domain.Spot) *domain.Spot {
	fa, fb := a.FilledFields(), b.FilledFields()
	switch {
	case fa > fb:
		return b
	case fb > fa:
		return a
	case a.ID < b.ID:
		return b
	default:
		return a
	}
}

func otherOf(a, b, loser *domain.Spot) *domain.Spot {
	if loser == a {
		return b
	}
	return a
}
