package handlers

import (
	"bufio"
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/metrics"
	"github.com/KeremKalyoncu/vidgate/internal/proxy"
)

// ProxyHandler relays remote media streams to the caller
type ProxyHandler struct {
	streamer    *proxy.Streamer
	allowOrigin string
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewProxyHandler creates a proxy handler. The first configured CORS origin,
// or "*" when none is configured, is advertised on every stream.
func NewProxyHandler(streamer *proxy.Streamer, corsOrigins []string, m *metrics.Metrics, logger *zap.Logger) *ProxyHandler {
	allowOrigin := "*"
	if len(corsOrigins) > 0 {
		allowOrigin = corsOrigins[0]
	}

	return &ProxyHandler{
		streamer:    streamer,
		allowOrigin: allowOrigin,
		metrics:     m,
		logger:      logger,
	}
}

// ProxyVideo streams the resource named by the url query parameter
func (h *ProxyHandler) ProxyVideo(c *fiber.Ctx) error {
	// Outlives the handler inside the stream writer
	rawURL := utils.CopyString(c.Query("url"))
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Missing url query parameter",
		})
	}

	// The body is written after this handler returns and fiber recycles its
	// request context, so the upstream request gets its own.
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := h.streamer.Open(ctx, rawURL)
	if err != nil {
		cancel()
		h.metrics.RecordStreamFailure()
		return c.Status(errors.GetStatusCode(err)).JSON(fiber.Map{
			"detail": errors.GetErrorMessage(err),
		})
	}

	c.Set(fiber.HeaderContentType, stream.ContentType)
	c.Set(fiber.HeaderAccessControlAllowOrigin, h.allowOrigin)

	h.metrics.RecordStreamStart()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer stream.Body.Close()

		n, err := proxy.Copy(w, stream.Body)
		h.metrics.RecordStreamEnd(n)

		if err != nil {
			// Either side hung up; the client just sees the stream end.
			h.logger.Debug("Proxy stream ended early",
				zap.String("url", rawURL),
				zap.Int64("bytes", n),
				zap.Error(err),
			)
		}
	})

	return nil
}
