package churn

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ConsumerName is the component name used in logs and tick results.
const ConsumerName = "consumer"

// ErrFileMissing marks a retirement attempt for a file that does not exist.
var ErrFileMissing = errors.New("file does not exist")

// Consumer removes the file named by its own counter on every tick.
type Consumer struct {
	*worker
}

// NewConsumer constructs a stopped Consumer and launches its loop goroutine.
// Call Close to release it.
func NewConsumer(dir string, interval time.Duration, opts ...Option) *Consumer {
	return &Consumer{worker: newWorker(ConsumerName, dir, interval, removeFile, opts...)}
}

// Tick runs one retirement step synchronously, outside the schedule.
func (c *Consumer) Tick() TickResult {
	return c.tick()
}

func removeFile(dir string, n int64) (Outcome, error) {
	path := filepath.Join(dir, FileName(n))
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return OutcomeMissing, fmt.Errorf("remove %s: %w", path, ErrFileMissing)
		}
		return OutcomeFailed, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return OutcomeFailed, fmt.Errorf("remove %s: is a directory", path)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return OutcomeMissing, fmt.Errorf("remove %s: %w", path, ErrFileMissing)
		}
		return OutcomeFailed, fmt.Errorf("remove %s: %w", path, err)
	}
	return OutcomeRemoved, nil
}
