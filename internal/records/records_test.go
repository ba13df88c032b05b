package records

import (
	"errors"
	"testing"
	"time"

	"forge-api/internal/shared"

	"go.uber.org/zap"
)

type stubSaver struct {
	failures int
	batches  [][]*shared.GenerationRecord
}

func (s *stubSaver) SaveGenerations(recs []*shared.GenerationRecord) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("db unavailable")
	}
	s.batches = append(s.batches, recs)
	return nil
}

func record(id string) *shared.GenerationRecord {
	return &shared.GenerationRecord{
		ID:        id,
		Language:  "go",
		TaskType:  "function",
		CreatedAt: time.Now(),
	}
}

func TestFlush_EmptyIsNoop(t *testing.T) {
	saver := &stubSaver{}
	c := NewCache(zap.NewNop().Sugar(), saver)

	if retry := c.Flush(); retry != 0 {
		t.Fatalf("expected no retry, got %v", retry)
	}
	if len(saver.batches) != 0 {
		t.Fatal("saver called with empty batch")
	}
}

func TestFlush_WritesPendingBatch(t *testing.T) {
	saver := &stubSaver{}
	c := NewCache(zap.NewNop().Sugar(), saver)
	c.Add(record("a"))
	c.Add(record("b"))

	if retry := c.Flush(); retry != 0 {
		t.Fatalf("expected no retry, got %v", retry)
	}
	if len(saver.batches) != 1 || len(saver.batches[0]) != 2 {
		t.Fatalf("unexpected batches: %+v", saver.batches)
	}
	if saver.batches[0][0].ID != "a" || saver.batches[0][1].ID != "b" {
		t.Fatalf("batch order lost: %+v", saver.batches[0])
	}
}

func TestFlush_FailureRequeuesAndRequestsRetry(t *testing.T) {
	saver := &stubSaver{failures: 1}
	c := NewCache(zap.NewNop().Sugar(), saver)
	c.Add(record("a"))

	retry := c.Flush()
	if retry != shared.RecordRetryDelay {
		t.Fatalf("expected retry delay %v, got %v", shared.RecordRetryDelay, retry)
	}

	if retry := c.Flush(); retry != 0 {
		t.Fatalf("expected retry to succeed, got %v", retry)
	}
	if len(saver.batches) != 1 || len(saver.batches[0]) != 1 || saver.batches[0][0].ID != "a" {
		t.Fatalf("record lost across retry: %+v", saver.batches)
	}
}

func TestFlush_DropsBatchAfterRepeatedFailures(t *testing.T) {
	saver := &stubSaver{failures: shared.MaxFlushRetries + 1}
	c := NewCache(zap.NewNop().Sugar(), saver)
	c.Add(record("a"))

	drops := 0
	for i := 0; i < shared.MaxFlushRetries+1; i++ {
		if c.Flush() == 0 {
			drops++
		}
	}
	if drops != 1 {
		t.Fatalf("expected final flush to drop the batch, drops=%d", drops)
	}
	if retry := c.Flush(); retry != 0 {
		t.Fatalf("cache should be empty after drop, got retry %v", retry)
	}
	if len(saver.batches) != 0 {
		t.Fatalf("dropped batch was still saved: %+v", saver.batches)
	}
}

func TestShutdown_FlushesPending(t *testing.T) {
	saver := &stubSaver{}
	c := NewCache(zap.NewNop().Sugar(), saver)
	c.Add(record("a"))

	c.Shutdown()

	if len(saver.batches) != 1 {
		t.Fatalf("shutdown did not flush pending records: %+v", saver.batches)
	}
}
