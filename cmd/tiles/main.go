// Command tiles downloads a map layer into an MBTiles file.
//
//	tiles -layer plan -zmin 8 -zmax 14 -out plan.mbtiles
//
// The bounding box defaults to Occitanie. Re-running the same command
// resumes an interrupted download: tiles already present are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/infrastructure/wmts"
	"github.com/spots-occitanie/internal/pkg/geo"
	"github.com/spots-occitanie/internal/pkg/logger"
	"github.com/spots-occitanie/internal/repository/sqlite"
	"github.com/spots-occitanie/internal/tiles"
	"github.com/spots-occitanie/internal/usecase"
)

func main() {
	var (
		layerName = flag.String("layer", "plan", "layer to download (plan, ortho, scan25, osm)")
		bboxStr   = flag.String("bbox", "", "bounding box minLon,minLat,maxLon,maxLat (default: Occitanie)")
		zmin      = flag.Int("zmin", 8, "minimum zoom level")
		zmax      = flag.Int("zmax", 14, "maximum zoom level")
		out       = flag.String("out", "", "output MBTiles path (default: <layer>.mbtiles)")
		overwrite = flag.Bool("overwrite", false, "re-download tiles already present")
		workers   = flag.Int("workers", 0, "concurrent downloads (default: DOWNLOAD_WORKERS)")
	)
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	// 3. Resolve layer and bounds
	layer, err := tiles.LayerByName(*layerName)
	if err != nil {
		log.Fatal("Unknown layer", zap.String("layer", *layerName))
	}

	bounds, err := parseBBox(*bboxStr)
	if err != nil {
		log.Fatal("Invalid bounding box", zap.String("bbox", *bboxStr), zap.Error(err))
	}

	outPath := *out
	if outPath == "" {
		outPath = layer.Name + ".mbtiles"
	}

	log.Info("Starting tile download",
		zap.String("layer", layer.Name),
		zap.String("output", outPath),
		zap.Int("zmin", *zmin),
		zap.Int("zmax", *zmax))

	// 4. Open output MBTiles
	store, err := sqlite.OpenMBTiles(outPath, log)
	if err != nil {
		log.Fatal("Failed to open MBTiles", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close MBTiles", zap.Error(err))
		}
	}()

	// 5. Build the pipeline
	cfg.Download.Workers = clampWorkers(*workers, cfg.Download.Workers)
	source := wmts.NewClient(&cfg.Download, log)
	downloadUC := usecase.NewDownloadUseCase(
		source,
		store,
		log,
		cfg.Download.Workers,
		cfg.Download.MaxRetries,
		cfg.Download.RequestDelay,
	)

	// 6. Setup cancellation on Ctrl-C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, finishing current tiles")
		cancel()
	}()

	// 7. Run with a progress bar
	req := usecase.DownloadRequest{
		Layer:     layer,
		Bounds:    bounds,
		MinZoom:   *zmin,
		MaxZoom:   *zmax,
		Overwrite: *overwrite,
	}

	total, err := downloadUC.TileCountForRequest(req)
	if err != nil {
		log.Fatal("Failed to compute tile count", zap.Error(err))
	}
	bar := progressbar.Default(int64(total), "tiles")
	req.OnTile = func() { _ = bar.Add(1) }

	report, err := downloadUC.Download(ctx, req)
	if err != nil && ctx.Err() == nil {
		log.Fatal("Download failed", zap.Error(err))
	}
	_ = bar.Finish()

	if report == nil {
		os.Exit(1)
	}

	fmt.Printf("\n%s: %d downloaded, %d skipped, %d failed, %.1f MB in %s\n",
		report.Layer, report.Downloaded, report.Skipped, report.Failed,
		float64(report.Bytes)/(1<<20), report.Duration.Round(1e9))

	if report.Failed > 0 {
		os.Exit(1)
	}
}

// clampWorkers keeps a -workers override inside the range config
// validation enforces; zero or negative means the flag was not set.
func clampWorkers(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	if n > 16 {
		return 16
	}
	return n
}

// parseBBox parses "minLon,minLat,maxLon,maxLat"; empty means Occitanie.
func parseBBox(s string) (domain.BoundingBox, error) {
	if strings.TrimSpace(s) == "" {
		return domain.BoundingBox{
			MinLon: geo.OccitanieMinLon,
			MinLat: geo.OccitanieMinLat,
			MaxLon: geo.OccitanieMaxLon,
			MaxLat: geo.OccitanieMaxLat,
		}, nil
	}

	var b domain.BoundingBox
	_, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "%f,%f,%f,%f",
		&b.MinLon, &b.MinLat, &b.MaxLon, &b.MaxLat)
	if err != nil {
		return b, fmt.Errorf("expected minLon,minLat,maxLon,maxLat: %w", err)
	}
	if !b.Valid() {
		return b, fmt.Errorf("degenerate bounding box")
	}
	return b, nil
}
