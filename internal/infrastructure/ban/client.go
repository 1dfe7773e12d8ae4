// Package ban talks to the Base Adresse Nationale geocoding API
// (api-adresse.data.gouv.fr). It is the primary address source: free,
// no key, and authoritative for French addresses.
package ban

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a BAN reverse geocoding client.
func NewClient(cfg *config.GeocodeConfig, logger *zap.Logger) repository.GeocodeRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BANBaseURL,
		logger:  logger,
	}
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			Label    string  `json:"label"`
			Postcode string  `json:"postcode"`
			City     string  `json:"city"`
			Type     string  `json:"type"`
			Score    float64 `json:"score"`
		} `json:"properties"`
	} `json:"features"`
}

// Reverse resolves the nearest address for a point. An empty feature
// list is a soft miss (nil, nil), not an error: many spots sit far from
// any addressable building.
func (c *client) Reverse(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	q := url.Values{}
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("lat", fmt.Sprintf("%f", lat))
	reqURL := fmt.Sprintf("%s/reverse/?%s", c.baseURL, q.Encode())

	c.logger.Debug("Calling BAN reverse API",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute BAN request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("BAN API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("%w: ban: status %d, body: %s", apperrors.ErrUpstreamAPI, resp.StatusCode, string(body))
	}

	var rr reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(rr.Features) == 0 {
		return nil, nil
	}

	p := rr.Features[0].Properties
	return &domain.Address{
		Label:    p.Label,
		Postcode: p.Postcode,
		Commune:  p.City,
		Kind:     p.Type,
		Provider: "ban",
	}, nil
}

var _ repository.GeocodeRepository = (*client)(nil)
