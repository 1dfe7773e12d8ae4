// Package spots holds the enrichment workers that drain the spots
// table: one for addresses, one for elevations, one for departments.
// Each worker loops over fixed-size batches until nothing is left.
package spots

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/usecase"
	"github.com/spots-occitanie/internal/usecase/dto"
	"github.com/spots-occitanie/internal/worker"
)

const (
	// batchSize spots per pass; keeps a Ctrl-C responsive
	batchSize = 25

	// errorPause before retrying after a failed pass
	errorPause = 5 * time.Second
)

// passFunc is one of the EnrichmentUseCase pass methods. afterID is
// the paging cursor: only spots with a greater id are selected.
type passFunc func(ctx context.Context, afterID int64, limit int, onSpot func()) (*dto.EnrichmentReport, error)

// EnrichmentWorker runs one enrichment pass repeatedly until the
// backlog is empty.
type EnrichmentWorker struct {
	*worker.BaseWorker
	run    passFunc
	onSpot func()
}

// NewAddressWorker enriches addresses (BAN, then Nominatim).
func NewAddressWorker(uc *usecase.EnrichmentUseCase, onSpot func(), logger *zap.Logger) *EnrichmentWorker {
	return &EnrichmentWorker{
		BaseWorker: worker.NewBaseWorker("address-enrichment", logger),
		run:        uc.EnrichAddresses,
		onSpot:     onSpot,
	}
}

// NewElevationWorker enriches elevations (IGN altimetry).
func NewElevationWorker(uc *usecase.EnrichmentUseCase, onSpot func(), logger *zap.Logger) *EnrichmentWorker {
	return &EnrichmentWorker{
		BaseWorker: worker.NewBaseWorker("elevation-enrichment", logger),
		run:        uc.EnrichElevations,
		onSpot:     onSpot,
	}
}

// NewDepartmentWorker infers departments from postcodes/coordinates.
func NewDepartmentWorker(uc *usecase.EnrichmentUseCase, onSpot func(), logger *zap.Logger) *EnrichmentWorker {
	return &EnrichmentWorker{
		BaseWorker: worker.NewBaseWorker("department-enrichment", logger),
		run:        uc.EnrichDepartments,
		onSpot:     onSpot,
	}
}

// Start loops over batches until the pass reports nothing processed.
func (w *EnrichmentWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting enrichment worker",
		zap.String("name", w.Name()),
		zap.Int("batch_size", batchSize))

	totals := dto.EnrichmentReport{Kind: w.Name()}

	// misses and failures stay unfilled in the table, so the cursor is
	// what guarantees progress: each pass starts past the last id the
	// previous pass examined, and an empty page means the end.
	var afterID int64

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped", zap.String("name", w.Name()))
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled", zap.String("name", w.Name()))
			return ctx.Err()

		default:
			report, err := w.run(ctx, afterID, batchSize, w.onSpot)
			if err != nil {
				logger.Error("Enrichment pass failed",
					zap.String("name", w.Name()),
					zap.Error(err))
				select {
				case <-time.After(errorPause):
					continue
				case <-ctx.Done():
					return ctx.Err()
				case <-w.StopChan():
					return nil
				}
			}

			totals.Processed += report.Processed
			totals.Updated += report.Updated
			totals.Misses += report.Misses
			totals.Failed += report.Failed

			if report.Processed == 0 {
				logger.Info("Backlog drained",
					zap.String("name", w.Name()),
					zap.Int("processed", totals.Processed),
					zap.Int("updated", totals.Updated),
					zap.Int("misses", totals.Misses),
					zap.Int("failed", totals.Failed))
				return nil
			}
			afterID = report.LastID
		}
	}
}
