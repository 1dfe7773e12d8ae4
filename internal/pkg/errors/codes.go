package errors

var (
	ErrSpotNotFound = New(
		"SPOT_NOT_FOUND",
		"Spot not found",
	)

	ErrTileNotFound = New(
		"TILE_NOT_FOUND",
		"Tile not found in tileset",
	)

	ErrLayerNotFound = New(
		"LAYER_NOT_FOUND",
		"Unknown layer name",
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
	)

	ErrInvalidZoom = New(
		"INVALID_ZOOM",
		"Invalid zoom level",
	)

	ErrInvalidBoundingBox = New(
		"INVALID_BOUNDING_BOX",
		"Invalid bounding box",
	)

	ErrUpstreamAPI = New(
		"UPSTREAM_API_ERROR",
		"Upstream API request failed",
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
	)
)
