package middleware

import (
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KeremKalyoncu/vidgate/internal/metrics"
)

// RequestLogger logs one line per request and counts it
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		if m != nil {
			m.IncrementRequests()
		}

		// A returned error is turned into a response by the app's ErrorHandler
		// only after the middleware chain unwinds.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if stderrors.As(err, &fe) {
				status = fe.Code
			}
		}

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}

		// fiber reuses these buffers once the handler returns
		fields := []zap.Field{
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", utils.CopyString(c.IP())),
			zap.String("request_id", utils.CopyString(c.GetRespHeader(fiber.HeaderXRequestID))),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		if ce := logger.Check(level, "HTTP request"); ce != nil {
			ce.Write(fields...)
		}

		return err
	}
}
