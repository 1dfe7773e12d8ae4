package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	"github.com/spots-occitanie/internal/pkg/errors"
)

const spotsSchema = `
CREATE TABLE IF NOT EXISTS spots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	address    TEXT,
	postcode   TEXT,
	commune    TEXT,
	department TEXT,
	elevation  REAL,
	source     TEXT,
	notes      TEXT,
	updated_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_spots_department ON spots(department);
CREATE INDEX IF NOT EXISTS idx_spots_category ON spots(category);
`

const spotColumns = `id, name, category, lat, lon, address, postcode,
	commune, department, elevation, source, notes, updated_at`

type spotRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSpotRepository(db *DB) repository.SpotRepository {
	return &spotRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *spotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, spotsSchema); err != nil {
		r.logger.Error("Failed to create spots schema", zap.Error(err))
		return errors.ErrDatabaseError
	}
	return nil
}

func (r *spotRepository) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	var spot domain.Spot
	err := r.db.GetContext(ctx, &spot,
		`SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrSpotNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get spot", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return &spot, nil
}

func (r *spotRepository) ListAll(ctx context.Context) ([]*domain.Spot, error) {
	var spots []*domain.Spot
	err := r.db.SelectContext(ctx, &spots,
		`SELECT `+spotColumns+` FROM spots ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to list spots", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return spots, nil
}

func (r *spotRepository) ListMissingAddress(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error) {
	return r.listWhere(ctx,
		`(address IS NULL OR address = '') AND id > ? ORDER BY id LIMIT ?`, afterID, limit)
}

func (r *spotRepository) ListMissingElevation(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error) {
	return r.listWhere(ctx,
		`elevation IS NULL AND id > ? ORDER BY id LIMIT ?`, afterID, limit)
}

func (r *spotRepository) ListMissingDepartment(ctx context.Context, afterID int64, limit int) ([]*domain.Spot, error) {
	return r.listWhere(ctx,
		`(department IS NULL OR department = '') AND id > ? ORDER BY id LIMIT ?`, afterID, limit)
}

func (r *spotRepository) listWhere(ctx context.Context, cond string, args ...interface{}) ([]*domain.Spot, error) {
	var spots []*domain.Spot
	err := r.db.SelectContext(ctx, &spots,
		`SELECT `+spotColumns+` FROM spots WHERE `+cond, args...)
	if err != nil {
		r.logger.Error("Failed to list spots", zap.String("cond", cond), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return spots, nil
}

func (r *spotRepository) UpdateAddress(ctx context.Context, id int64, addr *domain.Address) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE spots
		SET address = ?, postcode = ?, commune = ?, updated_at = ?
		WHERE id = ?`,
		addr.Label, nullIfEmpty(addr.Postcode), nullIfEmpty(addr.Commune), time.Now().UTC(), id)
	return r.checkUpdate(res, err, id)
}

func (r *spotRepository) UpdateElevation(ctx context.Context, id int64, elevation float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE spots SET elevation = ?, updated_at = ? WHERE id = ?`,
		elevation, time.Now().UTC(), id)
	return r.checkUpdate(res, err, id)
}

func (r *spotRepository) UpdateDepartment(ctx context.Context, id int64, department string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE spots SET department = ?, updated_at = ? WHERE id = ?`,
		department, time.Now().UTC(), id)
	return r.checkUpdate(res, err, id)
}

func (r *spotRepository) UpdateName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE spots SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	return r.checkUpdate(res, err, id)
}

func (r *spotRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
	return r.checkUpdate(res, err, id)
}

func (r *spotRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM spots`); err != nil {
		r.logger.Error("Failed to count spots", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	return n, nil
}

func (r *spotRepository) checkUpdate(res sql.Result, err error, id int64) error {
	if err != nil {
		r.logger.Error("Failed to update spot", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseError
	}
	if n == 0 {
		return errors.ErrSpotNotFound
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
