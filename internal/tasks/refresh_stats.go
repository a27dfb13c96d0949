package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/jisho/internal/database"
)

// StatsSource computes current storage statistics.
type StatsSource interface {
	Stats(ctx context.Context) (database.Stats, error)
}

// StatsCache is the in-memory snapshot served to clients. Refresh
// tasks overwrite it; readers never touch the store directly.
type StatsCache struct {
	mu        sync.RWMutex
	stats     database.Stats
	updatedAt time.Time
}

func (c *StatsCache) Set(stats database.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
	c.updatedAt = time.Now()
}

func (c *StatsCache) Get() (database.Stats, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats, c.updatedAt
}

// RefreshStatsTask recomputes storage statistics into the cache.
type RefreshStatsTask struct{}

// Config returns the queue configuration for stats refresh tasks.
// Refreshes are cheap and idempotent, so failed ones are not retried.
func (t RefreshStatsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_stats",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

// RefreshStatsProcessor creates a processor function for RefreshStatsTask.
func RefreshStatsProcessor(source StatsSource, cache *StatsCache) backlite.QueueProcessor[RefreshStatsTask] {
	return func(ctx context.Context, task RefreshStatsTask) error {
		if source == nil || cache == nil {
			return fmt.Errorf("stats source not configured")
		}

		stats, err := source.Stats(ctx)
		if err != nil {
			return fmt.Errorf("refresh stats: %w", err)
		}
		cache.Set(stats)
		return nil
	}
}

// NewRefreshStatsQueue creates a backlite queue for stats refresh tasks.
func NewRefreshStatsQueue(source StatsSource, cache *StatsCache) backlite.Queue {
	return backlite.NewQueue(RefreshStatsProcessor(source, cache))
}

// StatsRefresher enqueues refresh tasks fire-and-forget. A nil client
// (task queue disabled) makes Refresh a no-op.
type StatsRefresher struct {
	client *Client
}

func NewStatsRefresher(client *Client) *StatsRefresher {
	return &StatsRefresher{client: client}
}

func (r *StatsRefresher) Refresh() {
	if r == nil || r.client == nil {
		return
	}
	if _, err := r.client.Add(RefreshStatsTask{}).Save(); err != nil {
		log.Printf("WARNING: failed to enqueue stats refresh: %v", err)
	}
}
