package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/smartbotuz/avtomat/internal/models"
)

// statsRetention caps the number of run entries kept in the stats file.
const statsRetention = 30

// StatsStore appends one entry per daily run to a JSON stats file, keeping the
// most recent entries only.
type StatsStore struct {
	path string
	mu   sync.Mutex
}

func NewStatsStore(path string) (*StatsStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &StatsStore{path: path}, nil
}

func (s *StatsStore) Append(ctx context.Context, entry models.RunStats) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.read()
	if err != nil {
		return err
	}

	stats = append(stats, entry)
	if len(stats) > statsRetention {
		stats = stats[len(stats)-statsRetention:]
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}

	return nil
}

func (s *StatsStore) List(ctx context.Context) ([]models.RunStats, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *StatsStore) read() ([]models.RunStats, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.RunStats{}, nil
		}
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	var stats []models.RunStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats file: %w", err)
	}
	return stats, nil
}
