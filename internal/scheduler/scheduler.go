package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/models"
	"github.com/smartbotuz/avtomat/internal/store"
)

// Slots are the five fixed posting times, chosen for subscriber activity.
// The batch size of the daily job matches their count.
var Slots = []string{"09:00", "12:30", "17:30", "18:00", "20:00"}

// Publisher delivers one post to the channel.
type Publisher interface {
	Publish(ctx context.Context, post models.Post) (models.Post, error)
}

// Assignment is one post bound to one time-of-day slot. A slot fires at most
// once per assignment; slots whose time passed while the process was down are
// missed, not caught up.
type Assignment struct {
	Slot  string      `json:"slot"`
	Post  models.Post `json:"post"`
	Armed bool        `json:"armed"`
}

// Scheduler runs a single polling loop that wakes at a fixed interval,
// triggers the daily job when the clock matches the configured run time, and
// fires publication slots on minute-granularity matches. All work happens
// synchronously on the loop; a slow external call delays the next check.
type Scheduler struct {
	mu          sync.Mutex
	assignments []Assignment
	lastRunDate string

	publisher  Publisher
	store      store.BlogStore
	dailyRunAt string
	dailyJob   func(ctx context.Context)
	interval   time.Duration
	now        func() time.Time
	done       chan struct{}
}

func New(publisher Publisher, blogStore store.BlogStore, dailyRunAt string, interval time.Duration) *Scheduler {
	return &Scheduler{
		publisher:  publisher,
		store:      blogStore,
		dailyRunAt: dailyRunAt,
		interval:   interval,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// SetDailyJob registers the routine invoked when the wall clock matches the
// daily run time.
func (s *Scheduler) SetDailyJob(job func(ctx context.Context)) {
	s.dailyJob = job
}

// Start launches the polling loop in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	log := logger.Get()
	log.Info().
		Str("daily_run_at", s.dailyRunAt).
		Dur("interval", s.interval).
		Msg("Scheduler started, waiting for scheduled times")

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop terminates the polling loop.
func (s *Scheduler) Stop() {
	close(s.done)
	logger.Get().Info().Msg("Scheduler stopped")
}

// Assign binds each post of a fresh batch to one slot, in generation order.
// With fewer posts than slots only the first slots are used; excess posts
// beyond the slot count stay unscheduled. Every assignment is persisted.
func (s *Scheduler) Assign(ctx context.Context, batch []models.Post) {
	log := logger.Get()

	s.mu.Lock()
	s.assignments = s.assignments[:0]
	s.mu.Unlock()

	for i, post := range batch {
		if i >= len(Slots) {
			log.Warn().
				Int64("id", post.ID).
				Msg("No slot left for post, leaving unscheduled")
			continue
		}

		post.Slot = Slots[i]
		if err := s.store.Update(ctx, post); err != nil {
			log.Error().
				Err(err).
				Int64("id", post.ID).
				Msg("Failed to persist slot assignment")
		}

		s.mu.Lock()
		s.assignments = append(s.assignments, Assignment{
			Slot:  post.Slot,
			Post:  post,
			Armed: true,
		})
		s.mu.Unlock()

		log.Info().
			Str("slot", post.Slot).
			Str("title", post.Title).
			Msg("Scheduled post for Telegram")
	}
}

// Tick performs one clock check. Exported so a manual trigger and tests can
// drive the loop directly. A panic inside the daily job or a publish call is
// recovered and logged; the loop keeps going.
func (s *Scheduler) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Error().
				Interface("panic", r).
				Msg("Recovered from panic in scheduler tick")
		}
	}()

	now := s.now()
	hhmm := now.Format("15:04")
	date := now.Format("2006-01-02")

	runDaily := false
	s.mu.Lock()
	if s.dailyJob != nil && hhmm == s.dailyRunAt && s.lastRunDate != date {
		s.lastRunDate = date
		runDaily = true
	}
	s.mu.Unlock()

	// The daily trigger is handled before the slot check so that a batch
	// generated at the run time can still use a slot in that same minute.
	if runDaily {
		s.dailyJob(ctx)
	}

	// Disarm matching slots before publishing so a second sample of the same
	// minute cannot fire them again.
	var due []models.Post
	s.mu.Lock()
	for i := range s.assignments {
		if s.assignments[i].Armed && s.assignments[i].Slot == hhmm {
			s.assignments[i].Armed = false
			due = append(due, s.assignments[i].Post)
		}
	}
	s.mu.Unlock()

	for _, post := range due {
		updated, err := s.publisher.Publish(ctx, post)
		if err != nil {
			// Already logged by the publisher; the slot is spent and the post
			// stays unpublished until a manual re-run.
			continue
		}

		s.mu.Lock()
		for i := range s.assignments {
			if s.assignments[i].Post.ID == updated.ID {
				s.assignments[i].Post = updated
			}
		}
		s.mu.Unlock()
	}
}

// Assignments returns a snapshot of the current slot table.
func (s *Scheduler) Assignments() []Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}
