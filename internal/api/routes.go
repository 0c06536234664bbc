package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartbotuz/avtomat/internal/middleware"
)

// SetupRoutes configures all routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, adminKey string) {
	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)

	posts := api.Group("/posts")
	{
		posts.Get("", h.ListPosts)
		posts.Get("/:slug", h.GetPostBySlug)
	}

	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	{
		admin.Post("/run", h.TriggerRun)
		admin.Get("/stats", h.GetStats)
		admin.Get("/slots", h.GetSlots)
	}

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
