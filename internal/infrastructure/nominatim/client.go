// Package nominatim is the fallback reverse geocoder for points BAN does
// not cover (alpine lakes, ridges). The usage policy requires a custom
// User-Agent and at most one request per second, which the client
// enforces itself so callers cannot get the project banned.
package nominatim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	minInterval time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a Nominatim reverse geocoding client.
func NewClient(cfg *config.GeocodeConfig, userAgent string, logger *zap.Logger) repository.GeocodeRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     cfg.NominatimBaseURL,
		userAgent:   userAgent,
		minInterval: cfg.NominatimDelay,
		logger:      logger,
	}
}

// Reverse resolves a display name for a point. Respects the politeness
// interval before each call.
func (c *client) Reverse(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	if err := c.waitTurn(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")
	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute Nominatim request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Nominatim API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body[:min(len(body), 512)])))
		return nil, fmt.Errorf("%w: nominatim: status %d", apperrors.ErrUpstreamAPI, resp.StatusCode)
	}

	// Nominatim answers {"error": "Unable to geocode"} with status 200
	// when nothing is near the point.
	if gjson.GetBytes(body, "error").Exists() {
		return nil, nil
	}

	label := gjson.GetBytes(body, "display_name").String()
	if label == "" {
		return nil, nil
	}

	// the address object keys vary with place type, try from most to
	// least specific
	addr := gjson.GetBytes(body, "address")
	commune := firstOf(addr, "village", "town", "city", "municipality", "hamlet")

	return &domain.Address{
		Label:    label,
		Postcode: addr.Get("postcode").String(),
		Commune:  commune,
		Kind:     gjson.GetBytes(body, "type").String(),
		Provider: "nominatim",
	}, nil
}

func firstOf(addr gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := addr.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// waitTurn sleeps until the politeness interval since the previous call
// has elapsed.
func (c *client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastCall)
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ repository.GeocodeRepository = (*client)(nil)
