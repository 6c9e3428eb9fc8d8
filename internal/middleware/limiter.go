package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// QuoteLimiter caps fee quotes per client IP within the window. Refused
// requests get 429 with a coded body.
func QuoteLimiter(limit int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many quote requests",
				"code":  "RATE_LIMITED",
			})
		},
	})
}
