// Package ignalti queries the IGN Géoplateforme altimetry service for
// ground elevations. The REST endpoint accepts up to 50 pipe-separated
// points per request.
package ignalti

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

// maxBatch is the service-side limit on points per request.
const maxBatch = 50

// noData is the sentinel the service returns outside DEM coverage.
const noData = -99999.0

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates an IGN altimetry client.
func NewClient(cfg *config.GeocodeConfig, logger *zap.Logger) repository.ElevationRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.AltimetryBaseURL,
		logger:  logger,
	}
}

type elevationResponse struct {
	Elevations []json.Number `json:"elevations"`
}

// Elevations resolves elevations for the given points. The result is
// parallel to the input; NaN marks points without DEM coverage.
func (c *client) Elevations(ctx context.Context, points []domain.Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	out := make([]float64, 0, len(points))
	for start := 0; start < len(points); start += maxBatch {
		end := start + maxBatch
		if end > len(points) {
			end = len(points)
		}
		batch, err := c.fetchBatch(ctx, points[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (c *client) fetchBatch(ctx context.Context, points []domain.Point) ([]float64, error) {
	lons := make([]string, len(points))
	lats := make([]string, len(points))
	for i, p := range points {
		lons[i] = fmt.Sprintf("%f", p.Lon)
		lats[i] = fmt.Sprintf("%f", p.Lat)
	}

	q := url.Values{}
	q.Set("lon", strings.Join(lons, "|"))
	q.Set("lat", strings.Join(lats, "|"))
	q.Set("resource", "ign_rge_alti_wld")
	q.Set("zonly", "true")
	reqURL := fmt.Sprintf("%s/elevation.json?%s", c.baseURL, q.Encode())

	c.logger.Debug("Calling IGN altimetry API", zap.Int("points", len(points)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute altimetry request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Altimetry API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("%w: altimetry: status %d, body: %s", apperrors.ErrUpstreamAPI, resp.StatusCode, string(body))
	}

	var er elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(er.Elevations) != len(points) {
		return nil, fmt.Errorf("altimetry API returned %d elevations for %d points",
			len(er.Elevations), len(points))
	}

	out := make([]float64, len(er.Elevations))
	for i, n := range er.Elevations {
		v, err := n.Float64()
		if err != nil || v <= noData {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out, nil
}

var _ repository.ElevationRepository = (*client)(nil)
