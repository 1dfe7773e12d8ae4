package repository

import "context"

// TileSource fetches raw tile bytes from an upstream WMTS/XYZ endpoint.
type TileSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
