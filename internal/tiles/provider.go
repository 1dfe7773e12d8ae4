package tiles

import (
	"fmt"
	"strings"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/pkg/errors"
)

// Layer describes one downloadable tile layer. URLTemplate holds {z},
// {x} and {y} placeholders; for WMTS KVP endpoints the row placeholder
// receives the XYZ row directly because the PM tile matrix set uses the
// same origin as slippy-map tiles.
type Layer struct {
	Name        string
	Title       string
	URLTemplate string
	Format      string
	MinZoom     int
	MaxZoom     int
	Attribution string
}

const ignWMTS = "https://data.geopf.fr/wmts?SERVICE=WMTS&REQUEST=GetTile&VERSION=1.0.0" +
	"&STYLE=normal&TILEMATRIXSET=PM&TILEMATRIX={z}&TILEROW={y}&TILECOL={x}"

// Catalog lists the layers the downloader knows about.
var Catalog = map[string]Layer{
	"plan": {
		Name:        "plan",
		Title:       "IGN Plan v2",
		URLTemplate: ignWMTS + "&LAYER=GEOGRAPHICALGRIDSYSTEMS.PLANIGNV2&FORMAT=image/png",
		Format:      "png",
		MinZoom:     0,
		MaxZoom:     19,
		Attribution: "IGN-F/Géoportail",
	},
	"ortho": {
		Name:        "ortho",
		Title:       "IGN Orthophotos",
		URLTemplate: ignWMTS + "&LAYER=ORTHOIMAGERY.ORTHOPHOTOS&FORMAT=image/jpeg",
		Format:      "jpg",
		MinZoom:     0,
		MaxZoom:     19,
		Attribution: "IGN-F/Géoportail",
	},
	"scan25": {
		Name:        "scan25",
		Title:       "IGN Scan 25 Tourisme",
		URLTemplate: ignWMTS + "&LAYER=GEOGRAPHICALGRIDSYSTEMS.MAPS.SCAN25TOUR&FORMAT=image/jpeg",
		Format:      "jpg",
		MinZoom:     6,
		MaxZoom:     16,
		Attribution: "IGN-F/Géoportail",
	},
	"osm": {
		Name:        "osm",
		Title:       "OpenStreetMap",
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Format:      "png",
		MinZoom:     0,
		MaxZoom:     19,
		Attribution: "© OpenStreetMap contributors",
	},
}

// LayerByName resolves a catalog entry.
func LayerByName(name string) (Layer, error) {
	l, ok := Catalog[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Layer{}, errors.ErrLayerNotFound
	}
	return l, nil
}

// TileURL builds the request URL for one tile of the layer.
func (l Layer) TileURL(key domain.TileKey) string {
	r := strings.NewReplacer(
		"{z}", fmt.Sprintf("%d", key.Z),
		"{x}", fmt.Sprintf("%d", key.X),
		"{y}", fmt.Sprintf("%d", key.Y),
	)
	return r.Replace(l.URLTemplate)
}

// ClampZoom limits a requested zoom range to what the layer provides.
func (l Layer) ClampZoom(zmin, zmax int) (int, int) {
	if zmin < l.MinZoom {
		zmin = l.MinZoom
	}
	if zmax > l.MaxZoom {
		zmax = l.MaxZoom
	}
	return zmin, zmax
}
