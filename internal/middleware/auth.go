package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
)

// APIKeyHeader carries the shared secret
const APIKeyHeader = "X-API-Key"

// APIKeyAuth checks the X-API-Key header against validKey
func APIKeyAuth(validKey string) fiber.Handler {
	expected := []byte(validKey)

	return func(c *fiber.Ctx) error {
		apiKey := c.Get(APIKeyHeader)

		if apiKey == "" || len(expected) == 0 ||
			subtle.ConstantTimeCompare([]byte(apiKey), expected) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": errors.ErrUnauthorized.Message,
			})
		}

		return c.Next()
	}
}
