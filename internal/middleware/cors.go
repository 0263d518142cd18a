package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
)

// ErrOriginNotAllowed is the cause carried by a CORS rejection
var ErrOriginNotAllowed = stderrors.New("Not allowed by CORS")

// NormalizeOrigin lowercases an origin and strips a trailing slash so that
// configured and received origins compare equal
func NormalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// CORSGate rejects requests whose Origin is not allowed before they reach any
// route. Requests without an Origin header always pass; an empty allow-list
// allows every origin. A rejection is returned as an internal error and
// answered by the app's ErrorHandler.
func CORSGate(allowedOrigins []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[NormalizeOrigin(o)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}

		if _, ok := allowed[NormalizeOrigin(origin)]; !ok {
			return errors.ErrInternal.WithCause(ErrOriginNotAllowed)
		}

		return c.Next()
	}
}

// CORSPolicy answers preflights and sets CORS response headers for origins
// that passed CORSGate
func CORSPolicy(allowedOrigins []string) fiber.Handler {
	cfg := cors.Config{
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-API-Key",
		ExposeHeaders: "Content-Type,Content-Length,X-Request-ID",
	}

	// fiber refuses credentials together with a wildcard origin
	if len(allowedOrigins) == 0 {
		cfg.AllowOrigins = "*"
	} else {
		origins := make([]string, 0, len(allowedOrigins))
		for _, o := range allowedOrigins {
			origins = append(origins, NormalizeOrigin(o))
		}
		cfg.AllowOrigins = strings.Join(origins, ",")
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}
