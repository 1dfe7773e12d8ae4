// Command clean runs data-cleaning passes over the spots table. By
// default it only reports; pass -apply to write changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/pkg/logger"
	"github.com/spots-occitanie/internal/repository/sqlite"
	"github.com/spots-occitanie/internal/usecase"
	"github.com/spots-occitanie/internal/usecase/dto"
)

func main() {
	var (
		passes = flag.String("passes", "names,departments,region,dedup",
			"comma-separated passes to run (names, departments, region, dedup)")
		apply   = flag.Bool("apply", false, "write changes (default is dry-run)")
		radiusM = flag.Float64("dedup-radius", 50, "dedup radius in meters")
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

	dryRun := !*apply
	log.Info("Starting cleanup",
		zap.String("db", cfg.Database.SpotsPath),
		zap.String("passes", *passes),
		zap.Bool("dry_run", dryRun))

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
	ctx := context.Background()
	if err := spotRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	cleanupUC := usecase.NewCleanupUseCase(spotRepo, log, *radiusM/1000.0)

	// 4. Run the requested passes in a fixed order: renames first so
	// dedup compares clean records, dedup last
	type pass struct {
		name string
		run  func(context.Context, bool) (*dto.CleanupReport, error)
	}
	order := []pass{
		{"names", cleanupUC.NormalizeNames},
		{"departments", cleanupUC.FixDepartments},
		{"region", cleanupUC.DropOutOfRegion},
		{"dedup", cleanupUC.Deduplicate},
	}

	wanted := make(map[string]bool)
	for _, p := range strings.Split(*passes, ",") {
		wanted[strings.TrimSpace(p)] = true
	}

	failed := false
	for _, p := range order {
		if !wanted[p.name] {
			continue
		}
		report, err := p.run(ctx, dryRun)
		if err != nil {
			log.Error("Pass failed", zap.String("pass", p.name), zap.Error(err))
			failed = true
			continue
		}
		fmt.Printf("%-12s examined %d, changed %d, deleted %d%s\n",
			report.Pass, report.Examined, report.Changed, report.Deleted,
			dryRunSuffix(report.DryRun))
	}

	if dryRun {
		fmt.Println("\ndry-run only; re-run with -apply to write changes")
	}
	if failed {
		os.Exit(1)
	}
}

func dryRunSuffix(dry bool) string {
	if dry {
		return " (dry-run)"
	}
	return ""
}
