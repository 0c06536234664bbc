package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbotuz/avtomat/internal/logger"
)

// RequestLogger logs every HTTP request with method, path, status and
// latency through the global zerolog logger.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		event := logger.Get().Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start))

		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")
		return err
	}
}

// ErrorHandler renders unhandled errors as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
