package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/models"
	"github.com/smartbotuz/avtomat/internal/store"
)

// maxPreviewRunes caps the raw-content preview in the channel message.
const maxPreviewRunes = 300

const hashtags = "#AI #IT #SmartBotUz #Bot #Avtomatlashtirish"

// Publisher formats one post into a channel message and delivers it through
// the Telegram Bot API. A successful delivery flips the post's published flag
// and persists the change; a failure only logs, with no retry.
type Publisher struct {
	client      *resty.Client
	baseURL     string
	token       string
	chatID      string
	siteBaseURL string
	store       store.BlogStore
	now         func() time.Time
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewPublisher(token, chatID, siteBaseURL string, timeout time.Duration, blogStore store.BlogStore) *Publisher {
	return &Publisher{
		client:      resty.New().SetTimeout(timeout),
		baseURL:     "https://api.telegram.org",
		token:       token,
		chatID:      chatID,
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
		store:       blogStore,
		now:         time.Now,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (p *Publisher) SetBaseURL(url string) {
	p.baseURL = url
}

// FormatPost builds the channel message for a post.
func (p *Publisher) FormatPost(post models.Post) string {
	preview := post.Content
	if rs := []rune(preview); len(rs) > maxPreviewRunes {
		preview = string(rs[:maxPreviewRunes]) + "..."
	}

	return fmt.Sprintf("📢 YANGI MAQOLA: %s\n\n%s\n\n👉 Batafsil: %s/blog/%s\n\n%s",
		post.Title, preview, p.siteBaseURL, post.Slug, hashtags)
}

// Publish delivers one post to the channel. Already-published posts are
// skipped, which keeps duplicate scheduler ticks from double-posting. The
// returned record carries the updated publication state.
func (p *Publisher) Publish(ctx context.Context, post models.Post) (models.Post, error) {
	log := logger.Get()

	if post.Published {
		log.Debug().
			Int64("id", post.ID).
			Str("title", post.Title).
			Msg("Post already published, skipping")
		return post, nil
	}

	if err := p.send(ctx, p.FormatPost(post)); err != nil {
		log.Error().
			Err(err).
			Int64("id", post.ID).
			Str("title", post.Title).
			Msg("Failed to post to Telegram")
		return post, err
	}

	post.Published = true
	post.PublishedAt = p.now().Format("2006-01-02 15:04:05")

	if err := p.store.Update(ctx, post); err != nil {
		log.Error().
			Err(err).
			Int64("id", post.ID).
			Msg("Post delivered but status update failed")
		return post, err
	}

	log.Info().
		Int64("id", post.ID).
		Str("title", post.Title).
		Msg("Posted to Telegram channel")
	return post, nil
}

func (p *Publisher) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", p.baseURL, p.token)

	var result sendMessageResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    p.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&result).
		Post(url)

	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("sendMessage returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if !result.OK {
		return fmt.Errorf("sendMessage rejected: %s", result.Description)
	}

	return nil
}
