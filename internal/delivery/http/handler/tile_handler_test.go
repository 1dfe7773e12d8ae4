package handler_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/delivery/http/handler"
	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

// stubTileRepo implements only what the handler touches.
type stubTileRepo struct {
	repository.TileRepository
	tiles    map[domain.TileKey][]byte
	metadata map[string]string
}

func (s *stubTileRepo) GetTile(ctx context.Context, key domain.TileKey) ([]byte, error) {
	data, ok := s.tiles[key]
	if !ok {
		return nil, apperrors.ErrTileNotFound
	}
	return data, nil
}

func (s *stubTileRepo) Metadata(ctx context.Context) (map[string]string, error) {
	return s.metadata, nil
}

func newTileApp(repo repository.TileRepository, format string) *fiber.App {
	h := handler.NewTileHandler(repo, format, zap.NewNop())
	app := fiber.New()
	app.Get("/tiles/:z/:x/:y", h.GetTile)
	app.Get("/metadata", h.GetMetadata)
	return app
}

func TestTileHandler_GetTile(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	repo := &stubTileRepo{
		tiles: map[domain.TileKey][]byte{
			{Z: 12, X: 2064, Y: 1495}: payload,
		},
	}
	app := newTileApp(repo, "png")

	t.Run("serves a stored tile", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/tiles/12/2064/1495", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, payload, body)
	})

	t.Run("missing tile is 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/tiles/12/0/0", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("garbage coordinates are 400", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/tiles/12/abc/1495", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("jpeg layers get the jpeg content type", func(t *testing.T) {
		jpegApp := newTileApp(repo, "jpg")
		resp, err := jpegApp.Test(httptest.NewRequest("GET", "/tiles/12/2064/1495", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	})
}

func TestTileHandler_GetMetadata(t *testing.T) {
	repo := &stubTileRepo{
		metadata: map[string]string{
			"name":    "plan",
			"format":  "png",
			"minzoom": "8",
			"maxzoom": "14",
		},
	}
	app := newTileApp(repo, "png")

	resp, err := app.Test(httptest.NewRequest("GET", "/metadata", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "plan", gjson.GetBytes(body, "name").String())
	assert.Equal(t, "14", gjson.GetBytes(body, "maxzoom").String())
}
