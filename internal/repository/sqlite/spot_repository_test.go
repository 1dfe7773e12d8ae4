package sqlite

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	"github.com/spots-occitanie/internal/pkg/errors"
)

func newTestSpotRepo(t *testing.T) repository.SpotRepository {
	t.Helper()

	sqlxDB, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlxDB.Close() })

	repo := NewSpotRepository(NewDBForTest(sqlxDB, zap.NewNop()))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func insertSpot(t *testing.T, repo repository.SpotRepository, name string, lat, lon float64) int64 {
	t.Helper()

	r := repo.(*spotRepository)
	res, err := r.db.Exec(
		`INSERT INTO spots (name, category, lat, lon) VALUES (?, ?, ?, ?)`,
		name, "lake", lat, lon)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestSpotRepository_GetByID(t *testing.T) {
	repo := newTestSpotRepo(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		id := insertSpot(t, repo, "Lac de Salagou", 43.65, 3.38)

		spot, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Lac de Salagou", spot.Name)
		assert.InDelta(t, 43.65, spot.Lat, 1e-9)
		assert.Nil(t, spot.Address)
		assert.Nil(t, spot.Elevation)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		assert.ErrorIs(t, err, errors.ErrSpotNotFound)
	})
}

func TestSpotRepository_ListMissing(t *testing.T) {
	repo := newTestSpotRepo(t)
	ctx := context.Background()

	a := insertSpot(t, repo, "Cirque de Navacelles", 43.89, 3.51)
	b := insertSpot(t, repo, "Pont du Gard", 43.95, 4.53)

	require.NoError(t, repo.UpdateAddress(ctx, a, &domain.Address{
		Label:    "Navacelles, 34520 Saint-Maurice-Navacelles",
		Postcode: "34520",
		Commune:  "Saint-Maurice-Navacelles",
	}))
	require.NoError(t, repo.UpdateElevation(ctx, a, 340.5))
	require.NoError(t, repo.UpdateDepartment(ctx, a, "34"))

	t.Run("missing address", func(t *testing.T) {
		spots, err := repo.ListMissingAddress(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, spots, 1)
		assert.Equal(t, b, spots[0].ID)
	})

	t.Run("missing elevation", func(t *testing.T) {
		spots, err := repo.ListMissingElevation(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, spots, 1)
		assert.Equal(t, b, spots[0].ID)
	})

	t.Run("missing department", func(t *testing.T) {
		spots, err := repo.ListMissingDepartment(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, spots, 1)
		assert.Equal(t, b, spots[0].ID)
	})

	t.Run("limit applies", func(t *testing.T) {
		insertSpot(t, repo, "Gouffre de Padirac", 44.86, 1.75)
		spots, err := repo.ListMissingAddress(ctx, 0, 1)
		require.NoError(t, err)
		assert.Len(t, spots, 1)
	})

	t.Run("afterID skips earlier rows", func(t *testing.T) {
		c := insertSpot(t, repo, "Lac d'Oô", 42.74, 0.50)

		// past Pont du Gard: Padirac and Oô remain
		spots, err := repo.ListMissingAddress(ctx, b, 10)
		require.NoError(t, err)
		require.Len(t, spots, 2)

		spots, err = repo.ListMissingAddress(ctx, spots[0].ID, 10)
		require.NoError(t, err)
		require.Len(t, spots, 1)
		assert.Equal(t, c, spots[0].ID)

		spots, err = repo.ListMissingAddress(ctx, c, 10)
		require.NoError(t, err)
		assert.Empty(t, spots)
	})
}

func TestSpotRepository_UpdateAddress(t *testing.T) {
	repo := newTestSpotRepo(t)
	ctx := context.Background()

	t.Run("sets label postcode commune and timestamp", func(t *testing.T) {
		id := insertSpot(t, repo, "Pic du Canigou", 42.52, 2.46)

		err := repo.UpdateAddress(ctx, id, &domain.Address{
			Label:    "Canigou, 66500 Taurinya",
			Postcode: "66500",
			Commune:  "Taurinya",
		})
		require.NoError(t, err)

		spot, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, spot.Address)
		assert.Equal(t, "Canigou, 66500 Taurinya", *spot.Address)
		require.NotNil(t, spot.Postcode)
		assert.Equal(t, "66500", *spot.Postcode)
		assert.NotNil(t, spot.UpdatedAt)
	})

	t.Run("empty postcode stays NULL", func(t *testing.T) {
		id := insertSpot(t, repo, "Crête sans adresse", 42.60, 1.50)

		err := repo.UpdateAddress(ctx, id, &domain.Address{Label: "Quelque part en Ariège"})
		require.NoError(t, err)

		spot, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, spot.Postcode)
		assert.Nil(t, spot.Commune)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := repo.UpdateAddress(ctx, 99999, &domain.Address{Label: "x"})
		assert.ErrorIs(t, err, errors.ErrSpotNotFound)
	})
}

func TestSpotRepository_Delete(t *testing.T) {
	repo := newTestSpotRepo(t)
	ctx := context.Background()

	id := insertSpot(t, repo, "doublon", 43.0, 2.0)

	require.NoError(t, repo.Delete(ctx, id))
	_, err := repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, errors.ErrSpotNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, id), errors.ErrSpotNotFound)
}

func TestSpotRepository_Count(t *testing.T) {
	repo := newTestSpotRepo(t)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	insertSpot(t, repo, "a", 43.0, 2.0)
	insertSpot(t, repo, "b", 43.1, 2.1)

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
