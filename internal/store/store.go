package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/models"
)

var ErrNotFound = errors.New("post not found")

// BlogStore is the persistence boundary of the daily job. The file-backed
// implementation keeps load-modify-save whole-collection semantics; swapping
// in a real database later should not touch the orchestrator or publisher.
type BlogStore interface {
	Load(ctx context.Context) ([]models.Post, error)
	Save(ctx context.Context, posts []models.Post) error
	Update(ctx context.Context, post models.Post) error
}

// FileStore persists the whole blog collection as a single JSON array file.
// Every write overwrites the full file (last writer wins); the daily job
// assumes it is the sole writer during its run.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the full collection. A missing file is an empty collection.
// Records that fail validation are skipped with a warning rather than
// propagated as partial data.
func (s *FileStore) Load(ctx context.Context) ([]models.Post, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("failed to read blog file: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blog file: %w", err)
	}

	valid := posts[:0]
	for _, p := range posts {
		if err := p.Validate(); err != nil {
			logger.Warn().
				Int64("id", p.ID).
				Err(err).
				Msg("Skipping malformed post record")
			continue
		}
		valid = append(valid, p)
	}

	return valid, nil
}

// Save overwrites the full collection. Records are validated before any byte
// is written so a malformed batch never clobbers good data.
func (s *FileStore) Save(ctx context.Context, posts []models.Post) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for i := range posts {
		if err := posts[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal blog posts: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write blog file: %w", err)
	}

	return nil
}

// Update replaces the record matching the post's id and saves the whole
// collection back.
func (s *FileStore) Update(ctx context.Context, post models.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}

	posts, err := s.Load(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range posts {
		if posts[i].ID == post.ID {
			posts[i] = post
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: id=%d", ErrNotFound, post.ID)
	}

	return s.Save(ctx, posts)
}
