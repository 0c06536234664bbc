package ai

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/smartbotuz/avtomat/internal/models"
)

const (
	// fallbackTitle is used when neither the generated text nor the topic
	// yields a usable title.
	fallbackTitle = "Yangi maqola"

	maxTitleRunes   = 100
	maxExcerptRunes = 200
)

var (
	headingRe  = regexp.MustCompile(`<h2>(.*?)</h2>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	hyphenRuns = regexp.MustCompile(`[-\s]+`)
)

// BuildPost derives a full post record from a topic and its generated text.
// Given non-empty content it always returns a well-formed record.
func BuildPost(topic, content string, id int64, now time.Time) models.Post {
	title := ExtractTitle(content, topic)

	return models.Post{
		ID:          id,
		Title:       title,
		Content:     content,
		Excerpt:     Excerpt(content),
		Slug:        Slugify(title),
		Topic:       topic,
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("15:04:05"),
		Category:    models.CategoryAIGenerated,
		AIGenerated: true,
	}
}

// ExtractTitle picks a title from generated text: the first <h2> heading,
// else the first non-empty line with tags stripped, else the topic itself,
// else a fixed placeholder.
func ExtractTitle(content, topic string) string {
	if m := headingRe.FindStringSubmatch(content); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(tagRe.ReplaceAllString(line, ""))
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line == "" {
			continue
		}
		return truncateRunes(line, maxTitleRunes)
	}

	if topic = strings.TrimSpace(topic); topic != "" {
		return topic
	}

	return fallbackTitle
}

// Excerpt strips all markup from content and returns the first 200 runes,
// with an ellipsis when truncated.
func Excerpt(content string) string {
	clean := tagRe.ReplaceAllString(content, "")
	rs := []rune(clean)
	if len(rs) > maxExcerptRunes {
		return string(rs[:maxExcerptRunes]) + "..."
	}
	return clean
}

// Slugify builds a URL-safe identifier from a title: lowercase, drop
// everything that is not a letter, digit, whitespace or hyphen, collapse
// runs of hyphens and whitespace into a single hyphen, trim the ends.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	slug := hyphenRuns.ReplaceAllString(b.String(), "-")
	return strings.Trim(slug, "-")
}

func truncateRunes(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
