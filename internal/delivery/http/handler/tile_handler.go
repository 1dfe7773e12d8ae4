package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/domain"
	"github.com/spots-occitanie/internal/domain/repository"
	apperrors "github.com/spots-occitanie/internal/pkg/errors"
)

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// TileHandler serves tiles straight out of one MBTiles file for local
// preview in QGIS or a browser.
type TileHandler struct {
	tileRepo repository.TileRepository
	logger   *zap.Logger
	format   string
}

func NewTileHandler(tileRepo repository.TileRepository, format string, logger *zap.Logger) *TileHandler {
	if _, ok := contentTypes[format]; !ok {
		format = "png"
	}
	return &TileHandler{
		tileRepo: tileRepo,
		logger:   logger,
		format:   format,
	}
}

// GetTile answers /tiles/:z/:x/:y with raw tile bytes.
func (h *TileHandler) GetTile(c *fiber.Ctx) error {
	z, errZ := strconv.Atoi(c.Params("z"))
	x, errX := strconv.Atoi(c.Params("x"))
	y, errY := strconv.Atoi(c.Params("y"))
	if errZ != nil || errX != nil || errY != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid tile coordinates"})
	}

	tile, err := h.tileRepo.GetTile(c.Context(), domain.TileKey{Z: z, X: x, Y: y})
	if err != nil {
		if errors.Is(err, apperrors.ErrTileNotFound) {
			return c.Status(404).SendString("tile not found")
		}
		h.logger.Error("Failed to read tile",
			zap.Int("z", z), zap.Int("x", x), zap.Int("y", y),
			zap.Error(err))
		return c.Status(500).SendString("Failed to read tile")
	}

	c.Set("Content-Type", contentTypes[h.format])
	c.Set("Cache-Control", "public, max-age=86400")
	return c.Send(tile)
}

// GetMetadata answers /metadata with the MBTiles metadata table.
func (h *TileHandler) GetMetadata(c *fiber.Ctx) error {
	md, err := h.tileRepo.Metadata(c.Context())
	if err != nil {
		h.logger.Error("Failed to read metadata", zap.Error(err))
		return c.Status(500).SendString("Failed to read metadata")
	}
	return c.JSON(md)
}
