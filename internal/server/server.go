package server

import (
	"log"
	"time"

	"agent-assist-be/internal/bootstrap"
	"agent-assist-be/internal/config"
	"agent-assist-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name + " " + cfg.App.Version,
		BodyLimit:    1 * 1024 * 1024, // 1MB, messages are short
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		// Errors that escape the middleware chain (unknown routes, 405s)
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := serverutils.StatusCode(err)
			return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	container.VersionController.RegisterRoutes(app)
	container.SuggestionController.RegisterRoutes(app, container.ConversationMiddleware)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ %s is running on http://localhost:%s", s.cfg.App.Name, s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}
