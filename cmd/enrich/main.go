// Command enrich fills in missing addresses, elevations and departments
// on the spots table using the BAN, Nominatim and IGN altimetry APIs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/domain/repository"
	"github.com/spots-occitanie/internal/infrastructure/ban"
	"github.com/spots-occitanie/internal/infrastructure/ignalti"
	"github.com/spots-occitanie/internal/infrastructure/nominatim"
	"github.com/spots-occitanie/internal/pkg/logger"
	"github.com/spots-occitanie/internal/repository/cache"
	"github.com/spots-occitanie/internal/repository/sqlite"
	"github.com/spots-occitanie/internal/usecase"
	"github.com/spots-occitanie/internal/worker"
	"github.com/spots-occitanie/internal/worker/spots"
)

func main() {
	var (
		addresses   = flag.Bool("addresses", true, "enrich missing addresses")
		elevations  = flag.Bool("elevations", true, "enrich missing elevations")
		departments = flag.Bool("departments", true, "infer missing departments")
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

	log.Info("Starting spots enrichment",
		zap.String("db", cfg.Database.SpotsPath),
		zap.Bool("addresses", *addresses),
		zap.Bool("elevations", *elevations),
		zap.Bool("departments", *departments))

	// 3. Open the spots database
	db, err := sqlite.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open spots database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	spotRepo := sqlite.NewSpotRepository(db)
	if err := spotRepo.EnsureSchema(context.Background()); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	// 4. Optional Redis geocode cache
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, running without geocode cache", zap.Error(err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Failed to close Redis connection", zap.Error(err))
				}
			}()
			cacheRepo = cache.NewCacheRepository(redisClient)
		}
	}

	// 5. API clients
	banRepo := ban.NewClient(&cfg.Geocode, log)
	nominatimRepo := nominatim.NewClient(&cfg.Geocode, cfg.Download.UserAgent, log)
	elevationRepo := ignalti.NewClient(&cfg.Geocode, log)

	// 6. Use case and workers
	enrichmentUC := usecase.NewEnrichmentUseCase(
		spotRepo,
		banRepo,
		nominatimRepo,
		elevationRepo,
		cacheRepo,
		log,
		cfg.Redis.TTL,
		cfg.Geocode.BatchSize,
	)

	workerManager := worker.NewWorkerManager(log)
	if *addresses {
		workerManager.Register(spots.NewAddressWorker(enrichmentUC, nil, log))
	}
	if *elevations {
		workerManager.Register(spots.NewElevationWorker(enrichmentUC, nil, log))
	}
	if *departments {
		workerManager.Register(spots.NewDepartmentWorker(enrichmentUC, nil, log))
	}

	// 7. Run until drained or interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		workerManager.Wait()
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("Enrichment complete")
	case <-sigChan:
		log.Info("Received shutdown signal")
		cancel()
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}
}
