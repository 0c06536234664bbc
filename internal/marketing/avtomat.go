package marketing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/smartbotuz/avtomat/internal/ai"
	"github.com/smartbotuz/avtomat/internal/cache"
	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/models"
	"github.com/smartbotuz/avtomat/internal/store"
	"github.com/smartbotuz/avtomat/internal/utils"
)

// ErrNotEnoughTopics signals that the catalog is smaller than the batch size,
// which is a configuration mistake rather than a transient failure.
var ErrNotEnoughTopics = errors.New("topic catalog smaller than batch size")

// Generator produces a blog article for one topic.
type Generator interface {
	GenerateArticle(ctx context.Context, topic string) (string, error)
}

// SlotScheduler takes a freshly generated batch and binds it to posting slots.
type SlotScheduler interface {
	Assign(ctx context.Context, batch []models.Post)
}

// StatsSink records one entry per daily run.
type StatsSink interface {
	Append(ctx context.Context, entry models.RunStats) error
}

// Archiver stores a copy of the day's batch in external storage. Optional.
type Archiver interface {
	ArchiveBatch(ctx context.Context, date string, batch []models.Post) error
}

// Avtomat is the daily orchestrator: it selects topics, generates one post
// per topic, persists the batch and hands it to the slot scheduler. Every
// collaborator is injected; there is no ambient state.
type Avtomat struct {
	generator Generator
	store     store.BlogStore
	stats     StatsSink
	topics    cache.TopicCache
	sched     SlotScheduler
	archiver  Archiver

	catalog    []string
	batchSize  int
	topicTTL   time.Duration
	model      string
	now        func() time.Time
	shuffleInt func(n int) []int
}

type Options struct {
	Generator Generator
	Store     store.BlogStore
	Stats     StatsSink
	Topics    cache.TopicCache
	Scheduler SlotScheduler
	Archiver  Archiver // may be nil

	Catalog   []string
	BatchSize int
	TopicTTL  time.Duration
	Model     string
}

func New(opts Options) *Avtomat {
	catalog := opts.Catalog
	if len(catalog) == 0 {
		catalog = DefaultTopics
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	return &Avtomat{
		generator:  opts.Generator,
		store:      opts.Store,
		stats:      opts.Stats,
		topics:     opts.Topics,
		sched:      opts.Scheduler,
		archiver:   opts.Archiver,
		catalog:    catalog,
		batchSize:  batchSize,
		topicTTL:   opts.TopicTTL,
		model:      opts.Model,
		now:        time.Now,
		shuffleInt: rand.Perm,
	}
}

// RunDaily produces and persists one day's batch of posts, then delegates
// publication scheduling. It never propagates an error to the caller: every
// failure is logged and the next day's trigger starts clean.
func (a *Avtomat) RunDaily(ctx context.Context) {
	log := logger.Get()
	log.Info().Msg("Starting daily content generation")

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Msg("Daily content generation panicked")
		}
	}()

	topics, err := a.selectTopics(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Topic selection failed")
		a.recordStats(ctx, 0, 0, models.RunStatusFailed)
		return
	}
	log.Info().Strs("topics", topics).Msg("Selected topics for today")

	existing, err := a.store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load blog collection")
		a.recordStats(ctx, 0, 0, models.RunStatusFailed)
		return
	}

	nextID := maxID(existing) + 1
	var batch []models.Post
	for _, topic := range topics {
		text, err := a.generator.GenerateArticle(ctx, topic)
		if err != nil {
			log.Warn().
				Err(err).
				Str("topic", topic).
				Msg("Skipping topic, generation failed")
			continue
		}

		post := ai.BuildPost(topic, text, nextID, a.now())
		nextID++
		batch = append(batch, post)
		log.Info().Str("title", post.Title).Msg("Blog post created")
	}

	if len(batch) == 0 {
		log.Warn().Msg("No blog posts were created this run")
		return
	}

	if err := a.store.Save(ctx, append(existing, batch...)); err != nil {
		log.Error().
			Err(err).
			Int("posts", len(batch)).
			Msg("Failed to save blog posts, batch lost for this run")
		a.recordStats(ctx, len(batch), 0, models.RunStatusFailed)
		return
	}
	log.Info().Int("posts", len(batch)).Msg("Saved new blog posts")

	a.markTopicsUsed(ctx, batch)
	a.archiveBatch(ctx, batch)

	a.sched.Assign(ctx, batch)

	scheduled := len(batch)
	if scheduled > a.batchSize {
		scheduled = a.batchSize
	}
	a.recordStats(ctx, len(batch), scheduled, models.RunStatusCompleted)

	log.Info().Msg("Daily content generation completed")
}

// selectTopics draws batchSize distinct topics uniformly at random, preferring
// ones the cache has not seen recently. Cache errors degrade to plain random
// selection; a catalog smaller than the batch size fails loudly.
func (a *Avtomat) selectTopics(ctx context.Context) ([]string, error) {
	if len(a.catalog) < a.batchSize {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughTopics, len(a.catalog), a.batchSize)
	}

	perm := a.shuffleInt(len(a.catalog))

	var fresh, recent []string
	for _, idx := range perm {
		topic := a.catalog[idx]

		isRecent := false
		if a.topics != nil {
			var err error
			isRecent, err = a.topics.IsRecent(ctx, utils.Hash(topic))
			if err != nil {
				logger.Get().Debug().
					Err(err).
					Str("topic", topic).
					Msg("Topic cache unavailable, treating topic as fresh")
				isRecent = false
			}
		}

		if isRecent {
			recent = append(recent, topic)
		} else {
			fresh = append(fresh, topic)
		}
		if len(fresh) == a.batchSize {
			break
		}
	}

	selected := fresh
	for _, topic := range recent {
		if len(selected) == a.batchSize {
			break
		}
		selected = append(selected, topic)
	}

	return selected[:a.batchSize], nil
}

func (a *Avtomat) markTopicsUsed(ctx context.Context, batch []models.Post) {
	if a.topics == nil {
		return
	}
	for _, post := range batch {
		if err := a.topics.MarkUsed(ctx, utils.Hash(post.Topic), a.topicTTL); err != nil {
			logger.Get().Debug().
				Err(err).
				Str("topic", post.Topic).
				Msg("Failed to mark topic as used")
		}
	}
}

func (a *Avtomat) archiveBatch(ctx context.Context, batch []models.Post) {
	if a.archiver == nil {
		return
	}
	date := a.now().Format("2006-01-02")
	if err := a.archiver.ArchiveBatch(ctx, date, batch); err != nil {
		logger.Get().Error().
			Err(err).
			Str("date", date).
			Msg("Failed to archive batch")
	}
}

func (a *Avtomat) recordStats(ctx context.Context, created, scheduled int, status string) {
	if a.stats == nil {
		return
	}
	now := a.now()
	entry := models.RunStats{
		Date:           now.Format("2006-01-02"),
		Time:           now.Format("15:04:05"),
		PostsCreated:   created,
		PostsScheduled: scheduled,
		Model:          a.model,
		Status:         status,
	}
	if err := a.stats.Append(ctx, entry); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to update marketing stats")
	}
}

func maxID(posts []models.Post) int64 {
	var m int64
	for _, p := range posts {
		if p.ID > m {
			m = p.ID
		}
	}
	return m
}
