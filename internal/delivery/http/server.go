package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spots-occitanie/internal/config"
	"github.com/spots-occitanie/internal/delivery/http/handler"
	"github.com/spots-occitanie/internal/delivery/http/middleware"
)

// Server is the local preview server: one MBTiles file plus the spots
// table, meant for 127.0.0.1 use.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	tileHandler *handler.TileHandler
	spotHandler *handler.SpotHandler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tileHandler *handler.TileHandler,
	spotHandler *handler.SpotHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "SPOTS Occitanie preview",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	s := &Server{
		app:         app,
		config:      cfg,
		logger:      logger,
		tileHandler: tileHandler,
		spotHandler: spotHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.CORS())
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	s.app.Get("/tiles/:z/:x/:y", s.tileHandler.GetTile)
	s.app.Get("/metadata", s.tileHandler.GetMetadata)
	s.app.Get("/spots", s.spotHandler.GetSpots)
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting preview server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down preview server")
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
