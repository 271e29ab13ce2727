package churn

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProducerName is the component name used in logs and tick results.
const ProducerName = "producer"

// Producer writes one numbered file per tick into its target directory.
type Producer struct {
	*worker
}

// NewProducer constructs a stopped Producer and launches its loop goroutine.
// Call Close to release it.
func NewProducer(dir string, interval time.Duration, opts ...Option) *Producer {
	return &Producer{worker: newWorker(ProducerName, dir, interval, createFile, opts...)}
}

// Tick runs one creation step synchronously, outside the schedule.
func (p *Producer) Tick() TickResult {
	return p.tick()
}

func createFile(dir string, n int64) (Outcome, error) {
	path := filepath.Join(dir, FileName(n))
	if err := os.WriteFile(path, []byte(FileContent(n)), 0o644); err != nil {
		return OutcomeFailed, fmt.Errorf("create %s: %w", path, err)
	}
	return OutcomeCreated, nil
}
