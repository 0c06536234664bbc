package ai

import (
	"strings"
	"testing"
	"time"
	"unicode"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		topic   string
		want    string
	}{
		{
			name:    "h2 heading wins",
			content: "<h2>AI Chatbotlar — Biznes uchun Kelajak</h2><p>Matn.</p>",
			topic:   "AI chatbotlar biznesda",
			want:    "AI Chatbotlar — Biznes uchun Kelajak",
		},
		{
			name:    "first line fallback strips tags",
			content: "<p>Birinchi qator sarlavha</p>\n<p>Ikkinchi qator.</p>",
			topic:   "AI chatbotlar biznesda",
			want:    "Birinchi qator sarlavha",
		},
		{
			name:    "markdown heading marker trimmed",
			content: "# Sarlavha matni\nqolgan matn",
			topic:   "AI chatbotlar biznesda",
			want:    "Sarlavha matni",
		},
		{
			name:    "topic fallback for blank content",
			content: "\n\n",
			topic:   "Telegram bot orqali savdo",
			want:    "Telegram bot orqali savdo",
		},
		{
			name:    "placeholder when nothing usable",
			content: "",
			topic:   "  ",
			want:    fallbackTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.content, tt.topic); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTitleTruncatesLongLine(t *testing.T) {
	line := strings.Repeat("a", 150)
	got := ExtractTitle("<p>"+line+"</p>", "topic")
	if len([]rune(got)) != maxTitleRunes {
		t.Errorf("expected title truncated to %d runes, got %d", maxTitleRunes, len([]rune(got)))
	}
}

func TestExcerpt(t *testing.T) {
	short := "<h2>Sarlavha</h2><p>Qisqa matn.</p>"
	if got := Excerpt(short); got != "SarlavhaQisqa matn." {
		t.Errorf("Excerpt(short) = %q", got)
	}

	long := "<p>" + strings.Repeat("o", 500) + "</p>"
	got := Excerpt(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis on truncated excerpt, got %q", got)
	}
	if n := len([]rune(got)); n != maxExcerptRunes+3 {
		t.Errorf("expected %d runes, got %d", maxExcerptRunes+3, n)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"AI Chatbotlar — Biznes uchun Kelajak", "ai-chatbotlar-biznes-uchun-kelajak"},
		{"Hello, World!", "hello-world"},
		{"  --- leading junk --- ", "leading-junk"},
		{"!!!", ""},
		{"", ""},
		{"Sun'iy intellekt ta'limda", "suniy-intellekt-talimda"},
		{"AI   va\tbotlar", "ai-va-botlar"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugifyDeterministicAndClean(t *testing.T) {
	inputs := []string{
		"AI Chatbotlar — Biznes uchun Kelajak",
		"Telegram bot orqali savdo",
		"Цифровая трансформация",
		"...punctuation only???",
	}
	for _, in := range inputs {
		a, b := Slugify(in), Slugify(in)
		if a != b {
			t.Errorf("Slugify(%q) not deterministic: %q vs %q", in, a, b)
		}
		if strings.HasPrefix(a, "-") || strings.HasSuffix(a, "-") {
			t.Errorf("Slugify(%q) has leading/trailing hyphen: %q", in, a)
		}
		if strings.Contains(a, "--") {
			t.Errorf("Slugify(%q) contains hyphen run: %q", in, a)
		}
		for _, r := range a {
			if r == '-' {
				continue
			}
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				t.Errorf("Slugify(%q) produced non-alphanumeric rune %q", in, r)
			}
			if unicode.IsUpper(r) {
				t.Errorf("Slugify(%q) produced uppercase rune %q", in, r)
			}
		}
	}
}

func TestBuildPost(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 12, 0, time.Local)
	content := "<h2>AI Chatbotlar — Biznes uchun Kelajak</h2><p>Matn.</p>"

	p := BuildPost("AI chatbotlar biznesda", content, 42, now)

	if p.ID != 42 {
		t.Errorf("ID = %d", p.ID)
	}
	if p.Title != "AI Chatbotlar — Biznes uchun Kelajak" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Slug != "ai-chatbotlar-biznes-uchun-kelajak" {
		t.Errorf("Slug = %q", p.Slug)
	}
	if p.Date != "2025-03-10" || p.Time != "09:00:12" {
		t.Errorf("Date/Time = %q %q", p.Date, p.Time)
	}
	if p.Published || p.Slot != "" {
		t.Errorf("new post must be unpublished and unscheduled, got %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("built post failed validation: %v", err)
	}
}
