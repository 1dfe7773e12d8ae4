package dto

import (
	"time"

	"github.com/spots-occitanie/internal/domain"
)

// DownloadReport summarizes one tile download run.
type DownloadReport struct {
	RunID      string           `json:"run_id"`
	Layer      string           `json:"layer"`
	Downloaded int              `json:"downloaded"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	Bytes      int64            `json:"bytes"`
	Duration   time.Duration    `json:"duration"`
	FailedKeys []domain.TileKey `json:"failed_keys,omitempty"`
}

// EnrichmentReport summarizes one enrichment pass.
type EnrichmentReport struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Processed int    `json:"processed"`
	Updated   int    `json:"updated"`
	Misses    int    `json:"misses"`
	Failed    int    `json:"failed"`

	// LastID is the highest spot id examined; callers pass it back as
	// afterID to page past rows already attempted in this run.
	LastID int64 `json:"last_id"`
}

// CleanupReport summarizes one cleanup pass.
type CleanupReport struct {
	Pass     string `json:"pass"`
	Examined int    `json:"examined"`
	Changed  int    `json:"changed"`
	Deleted  int    `json:"deleted"`
	DryRun   bool   `json:"dry_run"`
}
