package ban

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

func TestClient_Reverse(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("successful reverse geocode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reverse/", r.URL.Path)
			assert.NotEmpty(t, r.URL.Query().Get("lat"))
			assert.NotEmpty(t, r.URL.Query().Get("lon"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"type": "FeatureCollection",
				"features": [{
					"type": "Feature",
					"properties": {
						"label": "8 Boulevard du Port 34140 Mèze",
						"postcode": "34140",
						"city": "Mèze",
						"type": "housenumber",
						"score": 0.92
					}
				}]
			}`))
		}))
		defer server.Close()

		c := NewClient(&config.GeocodeConfig{
			BANBaseURL:     server.URL,
			RequestTimeout: 5 * time.Second,
		}, logger)

		addr, err := c.Reverse(context.Background(), 43.42, 3.60)
		require.NoError(t, err)
		require.NotNil(t, addr)
		assert.Equal(t, "8 Boulevard du Port 34140 Mèze", addr.Label)
		assert.Equal(t, "34140", addr.Postcode)
		assert.Equal(t, "Mèze", addr.Commune)
		assert.Equal(t, "housenumber", addr.Kind)
		assert.Equal(t, "ban", addr.Provider)
	})

	t.Run("empty features is a miss not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
		}))
		defer server.Close()

		c := NewClient(&config.GeocodeConfig{
			BANBaseURL:     server.URL,
			RequestTimeout: 5 * time.Second,
		}, logger)

		addr, err := c.Reverse(context.Background(), 42.78, 0.14)
		require.NoError(t, err)
		assert.Nil(t, addr)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("maintenance"))
		}))
		defer server.Close()

		c := NewClient(&config.GeocodeConfig{
			BANBaseURL:     server.URL,
			RequestTimeout: 5 * time.Second,
		}, logger)

		addr, err := c.Reverse(context.Background(), 43.42, 3.60)
		assert.Error(t, err)
		assert.Nil(t, addr)
		assert.ErrorIs(t, err, apperrors.ErrUpstreamAPI)
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("malformed json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features": [`))
		}))
		defer server.Close()

		c := NewClient(&config.GeocodeConfig{
			BANBaseURL:     server.URL,
			RequestTimeout: 5 * time.Second,
		}, logger)

		_, err := c.Reverse(context.Background(), 43.42, 3.60)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})
}
