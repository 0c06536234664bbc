package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/models"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: "stderr"})
	os.Exit(m.Run())
}

func testPost(id int64) models.Post {
	return models.Post{
		ID:          id,
		Title:       "AI Chatbotlar Biznesda",
		Content:     "<h2>AI Chatbotlar Biznesda</h2><p>Matn.</p>",
		Excerpt:     "AI Chatbotlar BiznesdaMatn.",
		Slug:        "ai-chatbotlar-biznesda",
		Topic:       "AI chatbotlar biznesda",
		Date:        "2025-03-10",
		Time:        "09:00:12",
		Category:    models.CategoryAIGenerated,
		AIGenerated: true,
	}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "blog.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	posts, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected empty collection, got %d posts", len(posts))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testPost(1)
	p.Published = true
	p.Slot = "12:30"
	p.PublishedAt = "2025-03-10 12:30:05"

	if err := s.Save(ctx, []models.Post{p}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 post, got %d", len(loaded))
	}
	if !reflect.DeepEqual(loaded[0], p) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", loaded[0], p)
	}
}

func TestSaveRejectsMalformedRecord(t *testing.T) {
	s := newTestStore(t)

	p := testPost(1)
	p.Slug = ""
	if err := s.Save(context.Background(), []models.Post{p}); err == nil {
		t.Fatal("expected Save to reject record with missing slug")
	}
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.json")
	// Second record is missing title and content.
	raw := `[
	  {"id":1,"title":"Maqola","content":"<p>ok</p>","slug":"maqola","trend":"AI","date":"2025-03-10"},
	  {"id":2,"slug":"broken","trend":"AI","date":"2025-03-10"}
	]`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	posts, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != 1 {
		t.Errorf("expected only the valid record, got %+v", posts)
	}
}

func TestUpdateReplacesByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, []models.Post{testPost(1), testPost(2)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated := testPost(2)
	updated.Published = true
	updated.PublishedAt = "2025-03-10 17:30:02"
	if err := s.Update(ctx, updated); err != nil {
		t.Fatalf("Update: %v", err)
	}

	posts, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if !posts[1].Published || posts[1].PublishedAt == "" {
		t.Errorf("expected post 2 to be marked published, got %+v", posts[1])
	}
	if posts[0].Published {
		t.Errorf("post 1 should be untouched, got %+v", posts[0])
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, []models.Post{testPost(1)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Update(ctx, testPost(99)); err == nil {
		t.Fatal("expected error updating unknown id")
	}
}

func TestStatsRetention(t *testing.T) {
	s, err := NewStatsStore(filepath.Join(t.TempDir(), "marketing_stats.json"))
	if err != nil {
		t.Fatalf("NewStatsStore: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < statsRetention+5; i++ {
		entry := models.RunStats{
			Date:         "2025-03-10",
			PostsCreated: i,
			Status:       models.RunStatusCompleted,
		}
		if err := s.Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	stats, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stats) != statsRetention {
		t.Fatalf("expected %d entries, got %d", statsRetention, len(stats))
	}
	if stats[len(stats)-1].PostsCreated != statsRetention+4 {
		t.Errorf("expected newest entry last, got %+v", stats[len(stats)-1])
	}
}
