package api

import (
	"time"

	"dirchurn/internal/churn"
	"dirchurn/internal/journal"
	"dirchurn/internal/monitor"
)

// FromWorkerStats converts worker stats to their API representation.
func FromWorkerStats(stats churn.Stats) WorkerStatus {
	return WorkerStatus{
		Name:           stats.Name,
		Running:        stats.Running,
		IntervalMillis: int(stats.Interval / time.Millisecond),
		Counter:        stats.Counter,
		NextFile:       churn.FileName(stats.Counter),
		Ticks:          stats.Ticks,
		Warnings:       stats.Warnings,
		LastWarning:    stats.LastWarning,
	}
}

// FromSnapshot converts a classification snapshot. A zero snapshot is
// reported against fallbackDir so callers see where listings come from.
func FromSnapshot(snap monitor.Snapshot, fallbackDir string) DirectoryStatus {
	dir := snap.Dir
	if dir == "" {
		dir = fallbackDir
	}
	dto := DirectoryStatus{
		Path:       dir,
		State:      snap.State.String(),
		Color:      snap.State.Color(),
		FileCount:  snap.Count(),
		StatusLine: snap.StatusLine(),
	}
	if !snap.TakenAt.IsZero() {
		dto.UpdatedAt = formatTime(snap.TakenAt)
	}
	return dto
}

// FromJournalEntries converts journal rows, preserving order.
func FromJournalEntries(entries []journal.Entry) []JournalEntry {
	out := make([]JournalEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, JournalEntry{
			ID:        entry.ID,
			RunID:     entry.RunID,
			Kind:      entry.Kind,
			Worker:    entry.Worker,
			Counter:   entry.Counter,
			File:      entry.File,
			Outcome:   entry.Outcome,
			State:     entry.State,
			FileCount: entry.FileCount,
			Dir:       entry.Dir,
			Detail:    entry.Detail,
			CreatedAt: formatTime(entry.CreatedAt),
		})
	}
	return out
}

// ParseTime parses a timestamp produced by this package.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(dateTimeFormat, value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dateTimeFormat)
}
