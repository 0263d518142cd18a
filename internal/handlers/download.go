package handlers

import (
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/cache"
	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/extractor"
	"github.com/KeremKalyoncu/vidgate/internal/mapper"
	"github.com/KeremKalyoncu/vidgate/internal/metrics"
	"github.com/KeremKalyoncu/vidgate/internal/types"
	"github.com/KeremKalyoncu/vidgate/internal/validation"
)

// internalErrorPrefix is prepended to extraction failures reported as 500
const internalErrorPrefix = "Internal server error: "

// DownloadHandler serves metadata extraction requests
type DownloadHandler struct {
	extractor extractor.Extractor
	validator *validation.Validator
	cache     cache.ResponseCache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewDownloadHandler creates a download handler. responseCache may be nil.
func NewDownloadHandler(
	ext extractor.Extractor,
	validator *validation.Validator,
	responseCache cache.ResponseCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *DownloadHandler {
	return &DownloadHandler{
		extractor: ext,
		validator: validator,
		cache:     responseCache,
		metrics:   m,
		logger:    logger,
	}
}

// Download validates the requested URL, extracts its metadata and returns the
// mapped response
func (h *DownloadHandler) Download(c *fiber.Ctx) error {
	var req types.ExtractionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(errors.GetStatusCode(err)).JSON(fiber.Map{
			"error": errors.Reasons(err),
		})
	}

	if err := h.validator.CheckSource(req.URL); err != nil {
		return c.Status(errors.GetStatusCode(err)).JSON(fiber.Map{
			"error": errors.Reasons(err),
		})
	}

	ctx := c.UserContext()

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, req.URL)
		switch {
		case err == nil:
			h.metrics.RecordCacheHit()
			return c.JSON(cached)
		case stderrors.Is(err, cache.ErrCacheMiss):
			h.metrics.RecordCacheMiss()
		default:
			h.metrics.RecordCacheMiss()
			h.logger.Warn("Response cache lookup failed", zap.Error(err))
		}
	}

	host := sourceHost(req.URL)
	start := time.Now()
	h.metrics.RecordExtractionStart(host)

	info, err := h.extractor.Extract(ctx, req.URL)
	if err != nil {
		h.metrics.RecordExtractionFailure(host, stderrors.Is(err, errors.ErrExtractionTimeout))
		return h.extractionFailed(c, req.URL, err)
	}

	h.metrics.RecordExtractionSuccess(host, time.Since(start))

	resp := mapper.MapInfoToResponse(info)

	if h.cache != nil {
		if err := h.cache.Set(ctx, req.URL, resp); err != nil {
			h.logger.Warn("Response cache store failed", zap.Error(err))
		}
	}

	return c.JSON(resp)
}

// extractionFailed answers with the error envelope. Failures that look like a
// missing upstream resource are the caller's problem (400); everything else is
// reported as a server error.
func (h *DownloadHandler) extractionFailed(c *fiber.Ctx, sourceURL string, err error) error {
	msg := errors.GetErrorMessage(err)

	if strings.Contains(strings.ToLower(msg), "404") {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse(msg))
	}

	h.logger.Error("Extraction failed",
		zap.String("url", sourceURL),
		zap.String("code", errors.GetErrorCode(err)),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse(internalErrorPrefix + msg))
}

func sourceHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
