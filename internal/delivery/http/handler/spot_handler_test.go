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
)

type stubSpotRepo struct {
	repository.SpotRepository
	spots []*domain.Spot
}

func (s *stubSpotRepo) ListAll(ctx context.Context) ([]*domain.Spot, error) {
	return s.spots, nil
}

func TestSpotHandler_GetSpots(t *testing.T) {
	dep := "34"
	elev := 139.0
	repo := &stubSpotRepo{spots: []*domain.Spot{
		{ID: 1, Name: "Lac du Salagou", Category: "lake", Lat: 43.65, Lon: 3.38,
			Department: &dep, Elevation: &elev},
		{ID: 2, Name: "Pic du Canigou", Category: "summit", Lat: 42.52, Lon: 2.46},
	}}

	h := handler.NewSpotHandler(repo, zap.NewNop())
	app := fiber.New()
	app.Get("/spots", h.GetSpots)

	resp, err := app.Test(httptest.NewRequest("GET", "/spots", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", gjson.GetBytes(body, "type").String())
	features := gjson.GetBytes(body, "features").Array()
	require.Len(t, features, 2)

	first := features[0]
	assert.Equal(t, "Lac du Salagou", first.Get("properties.name").String())
	assert.Equal(t, "34", first.Get("properties.department").String())
	assert.InDelta(t, 3.38, first.Get("geometry.coordinates.0").Float(), 1e-9)
	assert.InDelta(t, 43.65, first.Get("geometry.coordinates.1").Float(), 1e-9)

	// optional fields absent when the spot is not enriched
	second := features[1]
	assert.False(t, second.Get("properties.department").Exists())
}
