package tiles

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/pkg/errors"
)

// Web Mercator latitude cutoff. Tiles do not exist beyond it.
const MaxLatitude = 85.05112878

const (
	ZoomMin = 0
	ZoomMax = 19
)

// At returns the XYZ tile containing a point at the given zoom.
func At(lat, lon float64, z int) domain.TileKey {
	t := maptile.At(orb.Point{lon, lat}, maptile.Zoom(z))
	return domain.TileKey{Z: z, X: int(t.X), Y: int(t.Y)}
}

// FlipY converts between XYZ and TMS row numbering. The transform is its
// own inverse.
func FlipY(z, y int) int {
	return (1 << uint(z)) - 1 - y
}

// Range is an inclusive rectangle of tiles at one zoom level.
type Range struct {
	Z    int
	MinX int
	MinY int
	MaxX int
	MaxY int
}

// RangeForBounds returns the tiles covering a bounding box at a zoom.
// North edge maps to the smallest Y.
func RangeForBounds(b domain.BoundingBox, z int) (Range, error) {
	if !b.Valid() {
		return Range{}, errors.ErrInvalidBoundingBox
	}
	if b.MinLat < -MaxLatitude || b.MaxLat > MaxLatitude {
		return Range{}, errors.ErrInvalidBoundingBox
	}
	if z < ZoomMin || z > ZoomMax {
		return Range{}, errors.ErrInvalidZoom
	}

	nw := At(b.MaxLat, b.MinLon, z)
	se := At(b.MinLat, b.MaxLon, z)

	return Range{
		Z:    z,
		MinX: nw.X,
		MinY: nw.Y,
		MaxX: se.X,
		MaxY: se.Y,
	}, nil
}

// Count returns the number of tiles in the range.
func (r Range) Count() int {
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

// Each calls fn for every tile in the range, row by row. Iteration stops
// when fn returns false.
func (r Range) Each(fn func(domain.TileKey) bool) {
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			if !fn(domain.TileKey{Z: r.Z, X: x, Y: y}) {
				return
			}
		}
	}
}

// Bound returns the geographic extent of a tile as an orb.Bound.
func Bound(key domain.TileKey) orb.Bound {
	t := maptile.New(uint32(key.X), uint32(key.Y), maptile.Zoom(key.Z))
	return t.Bound()
}
