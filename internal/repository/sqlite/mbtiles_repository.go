package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	"github.com/spots-occitanie/internal/pkg/errors"
)

// MBTiles 1.x schema. tile_row is TMS (flipped relative to XYZ).
const mbtilesSchema = `
CREATE TABLE IF NOT EXISTS metadata (
	name  TEXT,
	value TEXT
);
CREATE TABLE IF NOT EXISTS tiles (
	zoom_level  INTEGER,
	tile_column INTEGER,
	tile_row    INTEGER,
	tile_data   BLOB
);
CREATE UNIQUE INDEX IF NOT EXISTS tile_index
	ON tiles (zoom_level, tile_column, tile_row);
CREATE UNIQUE INDEX IF NOT EXISTS metadata_index ON metadata (name);
`

type mbtilesRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// OpenMBTiles opens (creating if needed) an MBTiles file.
func OpenMBTiles(path string, logger *zap.Logger) (repository.TileRepository, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mbtiles %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	logger.Info("MBTiles opened", zap.String("path", path))

	return &mbtilesRepository{db: db, logger: logger}, nil
}

// NewMBTilesForTest wraps an already-open sqlx handle for tests.
func NewMBTilesForTest(db *sqlx.DB, logger *zap.Logger) repository.TileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mbtilesRepository{db: db, logger: logger}
}

func (r *mbtilesRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, mbtilesSchema); err != nil {
		r.logger.Error("Failed to create mbtiles schema", zap.Error(err))
		return errors.ErrDatabaseError
	}
	return nil
}

func (r *mbtilesRepository) HasTile(ctx context.Context, key domain.TileKey) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM tiles
		WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		key.Z, key.X, tmsRow(key))
	if err != nil {
		r.logger.Error("Failed to probe tile", zap.Error(err))
		return false, errors.ErrDatabaseError
	}
	return n > 0, nil
}

func (r *mbtilesRepository) GetTile(ctx context.Context, key domain.TileKey) ([]byte, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `
		SELECT tile_data FROM tiles
		WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		key.Z, key.X, tmsRow(key))
	if err == sql.ErrNoRows {
		return nil, errors.ErrTileNotFound
	}
	if err != nil {
		r.logger.Error("Failed to read tile", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return data, nil
}

func (r *mbtilesRepository) PutTile(ctx context.Context, key domain.TileKey, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data)
		VALUES (?, ?, ?, ?)`,
		key.Z, key.X, tmsRow(key), data)
	if err != nil {
		r.logger.Error("Failed to write tile",
			zap.Int("z", key.Z), zap.Int("x", key.X), zap.Int("y", key.Y),
			zap.Error(err))
		return errors.ErrDatabaseError
	}
	return nil
}

func (r *mbtilesRepository) TileCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tiles`); err != nil {
		return 0, errors.ErrDatabaseError
	}
	return n, nil
}

func (r *mbtilesRepository) WriteMetadata(ctx context.Context, md *domain.TilesetMetadata) error {
	rows := map[string]string{
		"name":        md.Name,
		"format":      md.Format,
		"type":        "baselayer",
		"version":     "1",
		"description": md.Description,
		"attribution": md.Attribution,
		"bounds": fmt.Sprintf("%f,%f,%f,%f",
			md.Bounds.MinLon, md.Bounds.MinLat, md.Bounds.MaxLon, md.Bounds.MaxLat),
		"minzoom": fmt.Sprintf("%d", md.MinZoom),
		"maxzoom": fmt.Sprintf("%d", md.MaxZoom),
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError
	}
	defer tx.Rollback()

	for name, value := range rows {
		if value == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`,
			name, value); err != nil {
			r.logger.Error("Failed to write metadata", zap.String("name", name), zap.Error(err))
			return errors.ErrDatabaseError
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError
	}
	return nil
}

func (r *mbtilesRepository) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, value FROM metadata`)
	if err != nil {
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	md := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, errors.ErrDatabaseError
		}
		md[name] = value
	}
	return md, rows.Err()
}

func (r *mbtilesRepository) Close() error {
	return r.db.Close()
}

// tmsRow flips the XYZ row into MBTiles (TMS) numbering.
func tmsRow(key domain.TileKey) int {
	return (1 << uint(key.Z)) - 1 - key.Y
}
