package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dirchurn/internal/churn"
	"dirchurn/internal/journal"
	"dirchurn/internal/monitor"
)

func openTestStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), "run-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListRecent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.RecordTick(ctx, churn.TickResult{
		Worker: churn.ProducerName, Counter: 0, File: "file_0000.txt", Dir: "/tmp/m",
		Outcome: churn.OutcomeCreated, At: base,
	}); err != nil {
		t.Fatalf("RecordTick: %v", err)
	}
	if err := store.RecordTick(ctx, churn.TickResult{
		Worker: churn.ConsumerName, Counter: 3, File: "file_0003.txt", Dir: "/tmp/m",
		Outcome: churn.OutcomeMissing, Err: errors.New("gone"), At: base.Add(time.Second),
	}); err != nil {
		t.Fatalf("RecordTick: %v", err)
	}
	if err := store.RecordState(ctx, monitor.Snapshot{
		State: monitor.StateNormal, Files: []string{"file_0000.txt"}, Dir: "/tmp/m", TakenAt: base.Add(2 * time.Second),
	}); err != nil {
		t.Fatalf("RecordState: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Kind != journal.KindState || entries[0].State != "normal" || entries[0].FileCount != 1 {
		t.Fatalf("unexpected newest entry %+v", entries[0])
	}
	missing := entries[1]
	if missing.Worker != "consumer" || missing.Outcome != "missing" || missing.Detail != "gone" || missing.Counter != 3 {
		t.Fatalf("unexpected tick entry %+v", missing)
	}
	if entries[2].RunID != "run-1" || !entries[2].CreatedAt.Equal(base) {
		t.Fatalf("unexpected oldest entry %+v", entries[2])
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one entry, got %d (%v)", len(limited), err)
	}
}

func TestPruneRemovesOldEntries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	old := time.Now().Add(-30 * 24 * time.Hour)
	if err := store.RecordTick(ctx, churn.TickResult{Worker: "producer", Outcome: churn.OutcomeCreated, At: old}); err != nil {
		t.Fatalf("RecordTick: %v", err)
	}
	if err := store.RecordTick(ctx, churn.TickResult{Worker: "producer", Outcome: churn.OutcomeCreated, At: time.Now()}); err != nil {
		t.Fatalf("RecordTick: %v", err)
	}
	removed, err := store.Prune(ctx, time.Now().Add(-14*24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned row, got %d", removed)
	}
	entries, err := store.Recent(ctx, 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one remaining entry, got %d (%v)", len(entries), err)
	}
}

func TestReopenKeepsEntriesAndGeneratesRunID(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	first, err := journal.Open(path, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if first.RunID() == "" {
		t.Fatal("expected generated run id")
	}
	if err := first.RecordState(ctx, monitor.Snapshot{State: monitor.StateEmpty}); err != nil {
		t.Fatalf("RecordState: %v", err)
	}
	_ = first.Close()

	second, err := journal.Open(path, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if second.RunID() == first.RunID() {
		t.Fatal("expected a new run id per open")
	}
	entries, err := second.Recent(ctx, 5)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %d (%v)", len(entries), err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := journal.Open("", "x"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestConcurrentWritersAllPersist(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	const writers, perWriter = 3, 200
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < perWriter; n++ {
				var err error
				if w == writers-1 {
					err = store.RecordState(ctx, monitor.Snapshot{State: monitor.StateNormal, Dir: "/tmp/m"})
				} else {
					err = store.RecordTick(ctx, churn.TickResult{
						Worker: churn.ProducerName, Counter: int64(n), File: churn.FileName(int64(n)),
						Dir: "/tmp/m", Outcome: churn.OutcomeCreated,
					})
				}
				if err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("%d of %d writes failed, first: %v", len(failures), writers*perWriter, failures[0])
	}
	entries, err := store.Recent(ctx, writers*perWriter+10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != writers*perWriter {
		t.Fatalf("expected %d entries, got %d", writers*perWriter, len(entries))
	}
}
