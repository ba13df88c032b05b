// Package records buffers completed generation history rows and flushes them
// to storage in batches
package records

import (
	"sync"
	"time"

	"forge-api/internal/shared"

	"go.uber.org/zap"
)

// Saver persists a batch of generation records.
type Saver interface {
	SaveGenerations(recs []*shared.GenerationRecord) error
}

type Cache struct {
	mu       sync.Mutex
	pending  []*shared.GenerationRecord
	timer    *time.Timer
	failures int
	log      *zap.SugaredLogger
	saver    Saver
}

func NewCache(log *zap.SugaredLogger, saver Saver) *Cache {
	return &Cache{
		log:   log,
		saver: saver,
	}
}

// Add queues one record and arms the flush timer if it is not running.
func (c *Cache) Add(rec *shared.GenerationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, rec)

	if c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(shared.RecordFlushInterval, func() {
		retry := c.Flush()
		for retry != 0 {
			c.log.Warn("Flush requested retry, waiting...")
			time.Sleep(retry)
			retry = c.Flush()
		}
	})
}

// Flush writes the pending batch. A non-zero return is the delay after which
// the caller should flush again; the batch stays queued until it either saves
// or exceeds MaxFlushRetries and is dropped.
func (c *Cache) Flush() time.Duration {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	err := c.saver.SaveGenerations(batch)
	if err == nil {
		c.mu.Lock()
		c.failures = 0
		c.mu.Unlock()
		c.log.Infow("Flushed generation records", "count", len(batch))
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures > shared.MaxFlushRetries {
		c.log.Errorw("Dropping generation records after repeated flush failures",
			"error", err,
			"dropped", len(batch),
		)
		c.failures = 0
		return 0
	}
	c.log.Warnw("Failed to flush generation records", "error", err, "attempt", c.failures)
	c.pending = append(batch, c.pending...)
	return shared.RecordRetryDelay
}

// Shutdown stops the timer and makes a final flush pass.
func (c *Cache) Shutdown() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	for range shared.MaxFlushRetries + 1 {
		if c.Flush() == 0 {
			return
		}
	}
}
