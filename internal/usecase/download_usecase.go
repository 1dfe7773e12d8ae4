package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
	"github.com/spots-occitanie/internal/tiles"
	"github.com/spots-occitanie/internal/usecase/dto"
)

// keep the failure list in the report bounded; a dead layer would
// otherwise produce millions of entries
const maxReportedFailures = 100

// DownloadUseCase drives the tile-download-to-MBTiles pipeline.
type DownloadUseCase struct {
	source       repository.TileSource
	store        repository.TileRepository
	logger       *zap.Logger
	workers      int
	maxRetries   int
	requestDelay time.Duration
}

func NewDownloadUseCase(
	source repository.TileSource,
	store repository.TileRepository,
	logger *zap.Logger,
	workers int,
	maxRetries int,
	requestDelay time.Duration,
) *DownloadUseCase {
	if workers < 1 {
		workers = 1
	}
	return &DownloadUseCase{
		source:       source,
		store:        store,
		logger:       logger,
		workers:      workers,
		maxRetries:   maxRetries,
		requestDelay: requestDelay,
	}
}

// DownloadRequest describes one run.
type DownloadRequest struct {
	Layer     tiles.Layer
	Bounds    domain.BoundingBox
	MinZoom   int
	MaxZoom   int
	Overwrite bool

	// OnTile, when set, is called once per finished tile (downloaded,
	// skipped or failed). Used by the CLI progress bar.
	OnTile func()
}

// Download enumerates the tile ranges, fetches missing tiles with a
// bounded worker pool and writes them into the MBTiles store. Already
// present tiles are skipped unless Overwrite is set, which makes an
// interrupted run resumable by just running it again.
func (uc *DownloadUseCase) Download(ctx context.Context, req DownloadRequest) (*dto.DownloadReport, error) {
	start := time.Now()

	zmin, zmax := req.Layer.ClampZoom(req.MinZoom, req.MaxZoom)
	if zmin > zmax {
		return nil, apperrors.ErrInvalidZoom
	}

	if err := uc.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	report := &dto.DownloadReport{
		RunID: uuid.NewString(),
		Layer: req.Layer.Name,
	}

	keys := make(chan domain.TileKey)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range keys {
				uc.processTile(ctx, req, key, report, &mu)
				if req.OnTile != nil {
					req.OnTile()
				}
			}
		}()
	}

	// feed the pool; stop early on cancellation
	feedErr := uc.feed(ctx, req, zmin, zmax, keys)
	close(keys)
	wg.Wait()

	report.Duration = time.Since(start)

	if feedErr != nil && !errors.Is(feedErr, context.Canceled) {
		return report, feedErr
	}

	md := &domain.TilesetMetadata{
		Name:        req.Layer.Title,
		Format:      req.Layer.Format,
		Bounds:      req.Bounds,
		MinZoom:     zmin,
		MaxZoom:     zmax,
		Attribution: req.Layer.Attribution,
		Description: "Downloaded by spots-occitanie, run " + report.RunID,
	}
	if err := uc.store.WriteMetadata(ctx, md); err != nil {
		uc.logger.Warn("Failed to write tileset metadata", zap.Error(err))
	}

	uc.logger.Info("Download run finished",
		zap.String("run_id", report.RunID),
		zap.String("layer", req.Layer.Name),
		zap.Int("downloaded", report.Downloaded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("bytes", report.Bytes),
		zap.Duration("duration", report.Duration))

	return report, feedErr
}

// TileCountForRequest returns how many tiles the request covers, for
// progress bar sizing.
func (uc *DownloadUseCase) TileCountForRequest(req DownloadRequest) (int, error) {
	zmin, zmax := req.Layer.ClampZoom(req.MinZoom, req.MaxZoom)
	total := 0
	for z := zmin; z <= zmax; z++ {
		r, err := tiles.RangeForBounds(req.Bounds, z)
		if err != nil {
			return 0, err
		}
		total += r.Count()
	}
	return total, nil
}

func (uc *DownloadUseCase) feed(ctx context.Context, req DownloadRequest, zmin, zmax int, keys chan<- domain.TileKey) error {
	for z := zmin; z <= zmax; z++ {
		r, err := tiles.RangeForBounds(req.Bounds, z)
		if err != nil {
			return err
		}
		uc.logger.Debug("Queueing zoom level",
			zap.Int("zoom", z),
			zap.Int("tiles", r.Count()))

		canceled := false
		r.Each(func(key domain.TileKey) bool {
			select {
			case keys <- key:
				return true
			case <-ctx.Done():
				canceled = true
				return false
			}
		})
		if canceled {
			return ctx.Err()
		}
	}
	return nil
}

func (uc *DownloadUseCase) processTile(ctx context.Context, req DownloadRequest, key domain.TileKey, report *dto.DownloadReport, mu *sync.Mutex) {
	if !req.Overwrite {
		ok, err := uc.store.HasTile(ctx, key)
		if err == nil && ok {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			return
		}
	}

	data, err := uc.fetchWithRetry(ctx, req.Layer.TileURL(key))
	if err != nil {
		mu.Lock()
		report.Failed++
		if len(report.FailedKeys) < maxReportedFailures {
			report.FailedKeys = append(report.FailedKeys, key)
		}
		mu.Unlock()
		uc.logger.Warn("Tile failed",
			zap.Int("z", key.Z), zap.Int("x", key.X), zap.Int("y", key.Y),
			zap.Error(err))
		return
	}

	if err := uc.store.PutTile(ctx, key, data); err != nil {
		mu.Lock()
		report.Failed++
		mu.Unlock()
		return
	}

	mu.Lock()
	report.Downloaded++
	report.Bytes += int64(len(data))
	mu.Unlock()
}

func (uc *DownloadUseCase) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := uc.source.Fetch(ctx, url)
		if err == nil {
			uc.delay(ctx)
			return data, nil
		}
		// holes in provider coverage are permanent, do not retry
		if errors.Is(err, apperrors.ErrTileNotFound) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// delay spaces requests out per worker so a run stays polite even with
// several workers.
func (uc *DownloadUseCase) delay(ctx context.Context) {
	if uc.requestDelay <= 0 {
		return
	}
	select {
	case <-time.After(uc.requestDelay):
	case <-ctx.Done():
	}
}
