package handlers

import (
	"context"
	"os/exec"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/cache"
	"github.com/KeremKalyoncu/vidgate/internal/metrics"
)

// Banner is the plain-text body of GET /
const Banner = "🎉 Video Downloader API is running!"

// HealthHandler provides health check endpoints
type HealthHandler struct {
	ytdlpPath string
	cache     cache.ResponseCache
	metrics   *metrics.Metrics
	logger    *zap.Logger

	lookPath func(string) (string, error)
}

// NewHealthHandler creates a health handler. responseCache may be nil.
func NewHealthHandler(ytdlpPath string, responseCache cache.ResponseCache, m *metrics.Metrics, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		ytdlpPath: ytdlpPath,
		cache:     responseCache,
		metrics:   m,
		logger:    logger,
		lookPath:  exec.LookPath,
	}
}

// Root returns the service banner
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.SendString(Banner)
}

// BasicHealth always reports ok (for load balancers)
func (h *HealthHandler) BasicHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness reports whether the extractor binary and the cache are usable
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	checks := fiber.Map{}
	ready := true

	if _, err := h.lookPath(h.ytdlpPath); err != nil {
		ready = false
		checks["ytdlp"] = fiber.Map{"status": "unavailable", "error": err.Error()}
		h.logger.Warn("yt-dlp readiness check failed", zap.Error(err))
	} else {
		checks["ytdlp"] = fiber.Map{"status": "ok"}
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := h.cache.Ping(ctx); err != nil {
			ready = false
			checks["cache"] = fiber.Map{"status": "unavailable", "error": err.Error()}
			h.logger.Warn("Cache readiness check failed", zap.Error(err))
		} else {
			checks["cache"] = fiber.Map{"status": "ok"}
		}
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
			"checks": checks,
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
		"checks": checks,
	})
}

// Metrics returns the current metrics snapshot
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.GetSnapshot())
}
