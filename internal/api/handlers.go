package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/marketing"
	"github.com/smartbotuz/avtomat/internal/models"
	"github.com/smartbotuz/avtomat/internal/scheduler"
	"github.com/smartbotuz/avtomat/internal/store"
)

type statsLister interface {
	List(ctx context.Context) ([]models.RunStats, error)
}

// Handlers exposes a read-only view of the blog collection plus a small admin
// surface for triggering and inspecting the daily job.
type Handlers struct {
	store   store.BlogStore
	stats   statsLister
	sched   *scheduler.Scheduler
	avtomat *marketing.Avtomat
}

func NewHandlers(blogStore store.BlogStore, stats statsLister, sched *scheduler.Scheduler, avtomat *marketing.Avtomat) *Handlers {
	return &Handlers{
		store:   blogStore,
		stats:   stats,
		sched:   sched,
		avtomat: avtomat,
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ListPosts handles GET /api/v1/posts
func (h *Handlers) ListPosts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}

	posts, err := h.store.Load(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load posts",
		})
	}

	// Newest first.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}

	total := len(posts)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"items":     posts[start:end],
	})
}

// GetPostBySlug handles GET /api/v1/posts/:slug
func (h *Handlers) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post slug is required",
		})
	}

	posts, err := h.store.Load(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Str("slug", slug).Msg("Error loading posts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load posts",
		})
	}

	for _, post := range posts {
		if post.Slug == slug {
			return c.JSON(post)
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Post not found",
	})
}

// TriggerRun handles POST /api/v1/admin/run. It starts the daily job in the
// background, outside its usual wall-clock trigger.
func (h *Handlers) TriggerRun(c *fiber.Ctx) error {
	logger.Get().Info().
		Str("ip", c.IP()).
		Msg("Manual daily run triggered")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		h.avtomat.RunDaily(ctx)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

// GetStats handles GET /api/v1/admin/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	stats, err := h.stats.List(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}

	return c.JSON(fiber.Map{
		"items": stats,
	})
}

// GetSlots handles GET /api/v1/admin/slots
func (h *Handlers) GetSlots(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"slots": h.sched.Assignments(),
	})
}
