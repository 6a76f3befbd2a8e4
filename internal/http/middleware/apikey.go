// Package middleware holds the route middleware for the admin API.
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"quizmetrics/internal/config"
)

// AdminAPIKeyAuth validates the x-api-key header against the configured
// admin key.
func AdminAPIKeyAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		providedKey := c.Get("x-api-key")
		if providedKey == "" || !secureCompare(providedKey, cfg.AdminAPIKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}

// secureCompare performs constant-time string comparison
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := 0; i < len(a); i++ {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
