// Command serve previews a downloaded MBTiles file and the spots table
// over HTTP, for QGIS (XYZ layer at http://127.0.0.1:8123/tiles/{z}/{x}/{y})
// or a browser map.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	httpdelivery "github.com/spots-occitanie/internal/delivery/http"
	"github.com/spots-occitanie/internal/delivery/http/handler"
	"github.com/spots-occitanie/internal/pkg/logger"
	"github.com/spots-occitanie/internal/repository/sqlite"
)

func main() {
	var (
		mbtilesPath = flag.String("mbtiles", "plan.mbtiles", "MBTiles file to serve")
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

	// 3. Open stores
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

	tileRepo, err := sqlite.OpenMBTiles(*mbtilesPath, log)
	if err != nil {
		log.Fatal("Failed to open MBTiles", zap.Error(err))
	}
	defer func() {
		if err := tileRepo.Close(); err != nil {
			log.Error("Failed to close MBTiles", zap.Error(err))
		}
	}()

	// the metadata table knows the tile format
	format := "png"
	if md, err := tileRepo.Metadata(context.Background()); err == nil {
		if f, ok := md["format"]; ok {
			format = f
		}
	}

	// 4. Build and start the server
	tileHandler := handler.NewTileHandler(tileRepo, format, log)
	spotHandler := handler.NewSpotHandler(spotRepo, log)
	server := httpdelivery.NewServer(cfg, log, tileHandler, spotHandler)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Preview ready",
		zap.String("tiles", fmt.Sprintf("http://%s/tiles/{z}/{x}/{y}", cfg.GetServerAddr())),
		zap.String("spots", fmt.Sprintf("http://%s/spots", cfg.GetServerAddr())))

	// 5. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error shutting down server", zap.Error(err))
	}
}
