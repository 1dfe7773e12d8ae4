package domain

// TileKey addresses a tile in XYZ (slippy map) convention. MBTiles rows
// are stored flipped (TMS); the repository handles the conversion.
type TileKey struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

// TilesetMetadata is written into the MBTiles metadata table once per
// download run.
type TilesetMetadata struct {
	Name        string
	Format      string
	Bounds      BoundingBox
	MinZoom     int
	MaxZoom     int
	Attribution string
	Description string
}
