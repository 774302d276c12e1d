package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/callguard/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/callguard/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/callguard/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ws"
)

// ScanService is everything the scan and analyze routes need
type ScanService interface {
	handler.ScanService
	handler.Analyzer
}

type Dependencies struct {
	Sessions  handler.SessionService
	Scans     ScanService
	Hub       *ws.Hub
	DB        handler.Pinger
	Landmarks handler.ReadinessChecker
	APIKey    string
	RateLimit middleware.RateLimiterConfig
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Callguard API",
		BodyLimit:    12 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var healthHandler *handler.HealthHandler
	if r.deps != nil {
		healthHandler = handler.NewHealthHandler(r.deps.DB, r.deps.Landmarks)
	} else {
		healthHandler = handler.NewHealthHandler(nil, nil)
	}
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Only configure authenticated routes if dependencies were provided
	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(r.deps.APIKey))

	// Rate limiting (per caller) - must come after auth to have the client key
	r.rateLimiter = middleware.NewRateLimiter(r.deps.RateLimit)
	v1.Use(r.rateLimiter.Handler())

	analyzeHandler := handler.NewAnalyzeHandler(r.deps.Scans, r.logger)
	v1.Post("/analyze", analyzeHandler.Analyze)

	sessionHandler := handler.NewSessionHandler(r.deps.Sessions, r.deps.Scans, r.logger)

	sessions := v1.Group("/sessions")
	sessions.Post("/", sessionHandler.Create)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Delete("/:id", sessionHandler.Close)
	sessions.Post("/:id/activate", sessionHandler.Activate)
	sessions.Post("/:id/deactivate", sessionHandler.Deactivate)
	sessions.Post("/:id/scan", sessionHandler.Scan)
	sessions.Post("/:id/evaluate", sessionHandler.Evaluate)
	sessions.Get("/:id/scans", sessionHandler.History)

	// WebSocket endpoint
	if r.deps.Hub != nil {
		sessions.Get("/:id/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
