package scheduler

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/models"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: "stderr"})
	os.Exit(m.Run())
}

type fakePublisher struct {
	published []int64
	fail      bool
}

func (f *fakePublisher) Publish(ctx context.Context, post models.Post) (models.Post, error) {
	if f.fail {
		return post, fmt.Errorf("send failed")
	}
	f.published = append(f.published, post.ID)
	post.Published = true
	return post, nil
}

type fakeStore struct {
	updates []models.Post
}

func (f *fakeStore) Load(ctx context.Context) ([]models.Post, error) { return nil, nil }
func (f *fakeStore) Save(ctx context.Context, posts []models.Post) error {
	return nil
}
func (f *fakeStore) Update(ctx context.Context, post models.Post) error {
	f.updates = append(f.updates, post)
	return nil
}

func batch(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			ID:      int64(i + 1),
			Title:   fmt.Sprintf("Maqola %d", i+1),
			Content: "<p>matn</p>",
			Slug:    fmt.Sprintf("maqola-%d", i+1),
			Topic:   "AI",
			Date:    "2025-03-10",
		}
	}
	return posts
}

func at(hhmm string) func() time.Time {
	t, _ := time.Parse("15:04", hhmm)
	return func() time.Time {
		return time.Date(2025, 3, 10, t.Hour(), t.Minute(), 30, 0, time.Local)
	}
}

func TestAssignUsesSlotsInOrder(t *testing.T) {
	for k := 0; k <= 5; k++ {
		st := &fakeStore{}
		s := New(&fakePublisher{}, st, "09:00", time.Minute)
		s.Assign(context.Background(), batch(k))

		got := s.Assignments()
		if len(got) != k {
			t.Fatalf("k=%d: expected %d assignments, got %d", k, k, len(got))
		}
		seen := map[string]bool{}
		for i, a := range got {
			if a.Slot != Slots[i] {
				t.Errorf("k=%d: post %d assigned %q, want %q", k, i, a.Slot, Slots[i])
			}
			if seen[a.Slot] {
				t.Errorf("k=%d: slot %q reused", k, a.Slot)
			}
			seen[a.Slot] = true
			if !a.Armed {
				t.Errorf("k=%d: fresh assignment not armed", k)
			}
		}
		if len(st.updates) != k {
			t.Errorf("k=%d: expected %d persisted slot updates, got %d", k, k, len(st.updates))
		}
	}
}

func TestAssignLeavesExcessPostsUnscheduled(t *testing.T) {
	s := New(&fakePublisher{}, &fakeStore{}, "09:00", time.Minute)
	s.Assign(context.Background(), batch(7))

	if got := len(s.Assignments()); got != 5 {
		t.Errorf("expected 5 assignments for 7 posts, got %d", got)
	}
}

func TestTickFiresMatchingSlotOnce(t *testing.T) {
	pub := &fakePublisher{}
	s := New(pub, &fakeStore{}, "09:00", time.Minute)
	s.Assign(context.Background(), batch(2))

	s.now = at("12:30")
	s.Tick(context.Background())
	// Same minute sampled twice.
	s.Tick(context.Background())

	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Errorf("expected post 1 published exactly once, got %v", pub.published)
	}

	s.now = at("17:30")
	s.Tick(context.Background())
	if len(pub.published) != 2 || pub.published[1] != 2 {
		t.Errorf("expected post 2 published at its slot, got %v", pub.published)
	}
}

func TestTickIgnoresNonMatchingMinutes(t *testing.T) {
	pub := &fakePublisher{}
	s := New(pub, &fakeStore{}, "09:00", time.Minute)
	s.Assign(context.Background(), batch(1))

	for _, hhmm := range []string{"08:59", "09:01", "12:29", "23:00"} {
		s.now = at(hhmm)
		s.Tick(context.Background())
	}
	if len(pub.published) != 0 {
		t.Errorf("no slot should have fired, got %v", pub.published)
	}
}

func TestFailedSlotIsSpent(t *testing.T) {
	pub := &fakePublisher{fail: true}
	s := New(pub, &fakeStore{}, "09:00", time.Minute)
	s.Assign(context.Background(), batch(1))

	s.now = at("12:30")
	s.Tick(context.Background())

	pub.fail = false
	s.Tick(context.Background())
	if len(pub.published) != 0 {
		t.Errorf("a fired slot must not re-arm within the day, got %v", pub.published)
	}
	if a := s.Assignments()[0]; a.Post.Published {
		t.Error("failed publish must leave the post unpublished")
	}
}

func TestDailyJobRunsOncePerDate(t *testing.T) {
	runs := 0
	s := New(&fakePublisher{}, &fakeStore{}, "09:00", time.Minute)
	s.SetDailyJob(func(ctx context.Context) { runs++ })

	s.now = at("09:00")
	s.Tick(context.Background())
	s.Tick(context.Background())
	if runs != 1 {
		t.Errorf("expected exactly one daily run, got %d", runs)
	}

	s.now = func() time.Time {
		return time.Date(2025, 3, 11, 9, 0, 30, 0, time.Local)
	}
	s.Tick(context.Background())
	if runs != 2 {
		t.Errorf("expected next day's run to fire, got %d", runs)
	}
}

func TestDailyRunCanUseItsOwnMinuteSlot(t *testing.T) {
	pub := &fakePublisher{}
	s := New(pub, &fakeStore{}, "09:00", time.Minute)
	s.SetDailyJob(func(ctx context.Context) {
		s.Assign(ctx, batch(2))
	})

	s.now = at("09:00")
	s.Tick(context.Background())

	// The first slot is 09:00; the batch generated on this tick fires it.
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Errorf("expected post 1 published in the generation minute, got %v", pub.published)
	}
	if a := s.Assignments()[0]; a.Armed || !a.Post.Published {
		t.Errorf("expected first slot spent and post published, got %+v", a)
	}
}

func TestTickRecoversFromPanic(t *testing.T) {
	s := New(&fakePublisher{}, &fakeStore{}, "09:00", time.Minute)
	s.SetDailyJob(func(ctx context.Context) { panic("boom") })

	s.now = at("09:00")
	s.Tick(context.Background()) // must not panic the test

	// Loop keeps working afterwards.
	runs := 0
	s.SetDailyJob(func(ctx context.Context) { runs++ })
	s.now = func() time.Time {
		return time.Date(2025, 3, 11, 9, 0, 30, 0, time.Local)
	}
	s.Tick(context.Background())
	if runs != 1 {
		t.Errorf("expected loop to continue after panic, got %d runs", runs)
	}
}
