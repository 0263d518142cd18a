package app

import (
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/handlers"
	"github.com/KeremKalyoncu/vidgate/internal/middleware"
)

const (
	// DownloadPath is the metadata extraction endpoint
	DownloadPath = "/api/v1/download"

	// ProxyPath is the media stream proxy endpoint
	ProxyPath = "/api/v1/proxy-video"
)

// NewServer builds the fiber application with every route and middleware
func NewServer(c *Container) *fiber.App {
	cfg := c.Config

	app := fiber.New(fiber.Config{
		AppName:               "vidgate",
		ReadTimeout:           cfg.API.ReadTimeout,
		WriteTimeout:          cfg.API.WriteTimeout,
		BodyLimit:             cfg.API.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(c.Logger),
	})

	// Middleware stack (order matters)
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(middleware.RequestLogger(c.Logger, c.Metrics))
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORSGate(cfg.API.CORSOrigins))
	app.Use(middleware.CORSPolicy(cfg.API.CORSOrigins))
	app.Use(middleware.CompressionMiddleware(ProxyPath))

	if cfg.API.EnablePprof {
		app.Use(pprof.New())
		c.Logger.Info("pprof profiling endpoints enabled at /debug/pprof")
	}

	health := handlers.NewHealthHandler(c.YtdlpPath, c.Cache, c.Metrics, c.Logger)
	download := handlers.NewDownloadHandler(c.Extractor, c.Validator, c.Cache, c.Metrics, c.Logger)
	streams := handlers.NewProxyHandler(c.Streamer, cfg.API.CORSOrigins, c.Metrics, c.Logger)

	app.Get("/", health.Root)
	app.Get("/health", health.BasicHealth)
	app.Get("/health/ready", health.Readiness)
	app.Get("/metrics", health.Metrics)

	app.Post(DownloadPath, middleware.APIKeyAuth(cfg.API.APIKey), download.Download)
	app.Get(ProxyPath, middleware.RateLimit(cfg.Proxy.RateLimit, time.Minute), streams.ProxyVideo)

	return app
}

// ErrorHandler turns errors escaping the handlers into JSON responses. fiber
// errors (unknown route, bad method, body too large) keep their status;
// anything else is an opaque 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		logger.Error("Unhandled error",
			zap.String("path", utils.CopyString(c.Path())),
			zap.String("request_id", utils.CopyString(c.GetRespHeader(fiber.HeaderXRequestID))),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
