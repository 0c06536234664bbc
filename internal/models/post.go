package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CategoryAIGenerated tags every post produced by the daily job.
const CategoryAIGenerated = "AI Generated"

// Post represents one blog post in the JSON blog store. Field names mirror the
// legacy blog.json layout so existing data files keep loading.
type Post struct {
	ID          int64  `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	Excerpt     string `json:"excerpt"`
	Slug        string `json:"slug" validate:"required"`
	Topic       string `json:"trend" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time"`
	Category    string `json:"category"`
	AIGenerated bool   `json:"ai_generated"`
	Published   bool   `json:"posted_to_telegram"`
	Slot        string `json:"telegram_scheduled_time,omitempty"`
	PublishedAt string `json:"telegram_posted_time,omitempty"`
}

var validate = validator.New()

// Validate rejects records with missing required fields. The store calls this
// at its boundary so partial data never reaches the rest of the pipeline.
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid post record (id=%d): %w", p.ID, err)
	}
	return nil
}

// RunStats is one entry of the marketing stats file, appended after each
// daily run. Only the last 30 entries are retained.
type RunStats struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	PostsCreated   int    `json:"posts_created"`
	PostsScheduled int    `json:"posts_scheduled"`
	Model          string `json:"ai_model_used"`
	Status         string `json:"status"`
}

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
