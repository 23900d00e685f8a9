package middleware

import "github.com/gofiber/fiber/v2"

// Noop simply calls the next handler. It is the minimal template for new
// middleware in this package.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
