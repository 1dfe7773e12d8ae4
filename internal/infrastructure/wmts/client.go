// Package wmts fetches raw tiles over HTTP from WMTS/XYZ endpoints.
package wmts

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

type client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// NewClient creates a tile fetcher. The User-Agent matters: OSM rejects
// default Go clients and IGN logs abuse by agent string.
func NewClient(cfg *config.DownloadConfig, logger *zap.Logger) repository.TileSource {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Fetch downloads one tile. A 404 maps to ErrTileNotFound so callers can
// treat holes in provider coverage as skippable rather than fatal.
func (c *client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrTileNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		c.logger.Debug("Tile server returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", url))
		return nil, fmt.Errorf("%w: tile server: status %d, body: %s", apperrors.ErrUpstreamAPI, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tile server returned empty body")
	}
	return data, nil
}

var _ repository.TileSource = (*client)(nil)
