package bootstrap

import (
	"strings"

	apihttp "github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/in/http"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/config"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/infra/middleware"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the HTTP server with all routes registered. The returned
// cleanup releases the dependency graph.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	initLogger(cfg)

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.Default().WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is a drop-in replacement, noticeably faster than encoding/json
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 10 * 1024 * 1024,
	})

	// Global middleware, order matters
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
		} else {
			allowOrigins = "http://localhost:3000"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-User-ID,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	}))

	// Health endpoints stay outside the identity gate
	healthHandler := apihttp.NewHealthHandler(deps.DB, deps.Redis)
	healthHandler.Register(app)

	// API routes require a resolved caller identity
	api := app.Group("/api/v1")
	api.Use(middleware.UserIdentity())

	limiter := ratelimit.NewSlidingWindowLimiter(deps.Redis, cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	api.Use(middleware.RateLimit(limiter))

	apihttp.NewMessageHandler(deps.MessageService).Register(api)
	apihttp.NewAIHandler(deps.AIService, deps.MessageService).Register(api)
	apihttp.NewReplyHandler(deps.ReplyService).Register(api)

	return app, cleanup, nil
}

func initLogger(cfg *config.Config) {
	level := "info"
	if cfg.IsDevelopment() {
		level = "debug"
	}
	logger.Init(logger.Config{
		Level:   level,
		Service: "champa-inbox",
		Pretty:  cfg.IsDevelopment(),
	})
}
