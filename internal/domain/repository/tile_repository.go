package repository

import (
	"context"

	"github.com/spots-occitanie/internal/domain"
)

// TileRepository defines access to one MBTiles file. Keys use the XYZ
// convention; implementations flip rows to TMS internally.
type TileRepository interface {
	// EnsureSchema creates the tiles and metadata tables if missing.
	EnsureSchema(ctx context.Context) error

	// HasTile reports whether a tile is already stored.
	HasTile(ctx context.Context, key domain.TileKey) (bool, error)

	// GetTile returns stored tile data, or errors.ErrTileNotFound.
	GetTile(ctx context.Context, key domain.TileKey) ([]byte, error)

	// PutTile upserts tile data (INSERT OR REPLACE).
	PutTile(ctx context.Context, key domain.TileKey, data []byte) error

	// TileCount returns the number of stored tiles.
	TileCount(ctx context.Context) (int, error)

	// WriteMetadata replaces the metadata rows for the tileset.
	WriteMetadata(ctx context.Context, md *domain.TilesetMetadata) error

	// Metadata returns the metadata table as a map.
	Metadata(ctx context.Context) (map[string]string, error)

	// Close releases the underlying database handle.
	Close() error
}
