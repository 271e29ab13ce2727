package api

import (
	"testing"
	"time"

	"dirchurn/internal/churn"
	"dirchurn/internal/journal"
	"dirchurn/internal/monitor"
)

func TestFromWorkerStats(t *testing.T) {
	dto := FromWorkerStats(churn.Stats{
		Name:     "producer",
		Running:  true,
		Interval: 2500 * time.Millisecond,
		Counter:  12,
		Ticks:    13,
		Warnings: 1,
	})
	if dto.IntervalMillis != 2500 || dto.NextFile != "file_0012.txt" || !dto.Running {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestFromSnapshot(t *testing.T) {
	taken := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	dto := FromSnapshot(monitor.Snapshot{
		State:   monitor.StateOverloaded,
		Files:   make([]string, 21),
		Dir:     "/srv/churn",
		TakenAt: taken,
	}, "/ignored")
	if dto.State != "overloaded" || dto.Color != "orange" || dto.FileCount != 21 {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if dto.StatusLine != "Status: overloaded (21 files)" {
		t.Fatalf("unexpected status line %q", dto.StatusLine)
	}
	parsed, err := ParseTime(dto.UpdatedAt)
	if err != nil || !parsed.Equal(taken) {
		t.Fatalf("unexpected timestamp %q (%v)", dto.UpdatedAt, err)
	}

	empty := FromSnapshot(monitor.Snapshot{}, "/fallback")
	if empty.Path != "/fallback" || empty.State != "empty" || empty.UpdatedAt != "" {
		t.Fatalf("unexpected zero snapshot dto %+v", empty)
	}
}

func TestFromJournalEntries(t *testing.T) {
	out := FromJournalEntries([]journal.Entry{
		{ID: 2, Kind: journal.KindTick, Worker: "consumer", Outcome: "missing", CreatedAt: time.Unix(10, 0)},
		{ID: 1, Kind: journal.KindState, State: "empty", CreatedAt: time.Unix(5, 0)},
	})
	if len(out) != 2 || out[0].ID != 2 || out[1].State != "empty" {
		t.Fatalf("unexpected entries %+v", out)
	}
	if out[0].CreatedAt == "" {
		t.Fatal("expected formatted timestamp")
	}
	if got := FromJournalEntries(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
