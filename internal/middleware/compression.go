package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
)

// CompressionMiddleware compresses JSON and text responses. Paths under any of
// skipPrefixes (the media proxy) are relayed untouched.
func CompressionMiddleware(skipPrefixes ...string) fiber.Handler {
	return compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // prioritize speed over compression ratio

		Next: func(c *fiber.Ctx) bool {
			path := c.Path()
			for _, prefix := range skipPrefixes {
				if strings.HasPrefix(path, prefix) {
					return true
				}
			}
			return false
		},
	})
}
