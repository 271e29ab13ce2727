package churn

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dirchurn/internal/logging"
)

var (
	// ErrNoDirectory is reported when a tick runs without a target directory.
	ErrNoDirectory = errors.New("target directory not configured")
	// ErrInvalidInterval rejects non-positive tick periods.
	ErrInvalidInterval = errors.New("interval must be positive")
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("worker closed")
)

// Outcome classifies what a single tick did.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeRemoved Outcome = "removed"
	OutcomeMissing Outcome = "missing"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// TickResult describes one executed tick. Counter is -1 for skipped ticks.
type TickResult struct {
	Worker  string
	Counter int64
	File    string
	Dir     string
	Outcome Outcome
	Err     error
	At      time.Time
}

// Observer receives every tick result on the worker goroutine.
// It must not call back into the worker's scheduling commands.
type Observer func(TickResult)

// WorkerConfig is the mutable part of a worker shared with the controller.
type WorkerConfig struct {
	Dir      string
	Interval time.Duration
}

// Stats is a point-in-time view of a worker.
type Stats struct {
	Name        string
	Running     bool
	Dir         string
	Interval    time.Duration
	Counter     int64
	Ticks       uint64
	Warnings    uint64
	LastWarning string
}

// Option customizes a worker at construction.
type Option func(*worker)

// WithLogger sets the base logger; the worker adds its component name.
func WithLogger(logger *slog.Logger) Option {
	return func(w *worker) {
		w.logger = logger
	}
}

// WithObserver registers a callback for tick results.
func WithObserver(fn Observer) Option {
	return func(w *worker) {
		w.observer = fn
	}
}

type action func(dir string, n int64) (Outcome, error)

type commandKind int

const (
	cmdStart commandKind = iota
	cmdStop
	cmdSetInterval
)

type command struct {
	kind     commandKind
	interval time.Duration
	ack      chan struct{}
}

type worker struct {
	name     string
	logger   *slog.Logger
	observer Observer
	act      action

	// mu guards cfg and the bookkeeping below; it is never held during I/O.
	mu          sync.Mutex
	cfg         WorkerConfig
	counter     int64
	running     bool
	ticks       uint64
	warnings    uint64
	lastWarning string

	inbox     chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newWorker(name string, dir string, interval time.Duration, act action, opts ...Option) *worker {
	w := &worker{
		name:  name,
		act:   act,
		cfg:   WorkerConfig{Dir: dir, Interval: interval},
		inbox: make(chan command),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, name)
	go w.loop()
	return w
}

// Configure replaces the target directory. A tick already running keeps the
// directory it captured; the next tick sees the new one.
func (w *worker) Configure(dir string) {
	w.mu.Lock()
	previous := w.cfg.Dir
	w.cfg.Dir = dir
	w.mu.Unlock()

	if previous != dir {
		w.logger.Info("target directory updated",
			logging.String(logging.FieldEventType, "worker_dir_updated"),
			logging.String(logging.FieldDir, dir),
			logging.String("previous_dir", previous),
		)
	}
}

// Config returns a copy of the current configuration.
func (w *worker) Config() WorkerConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Start begins periodic ticking. Calling Start on a running worker restarts
// the period without touching the counter. A non-positive interval reuses the
// configured one.
func (w *worker) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = w.Config().Interval
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if err := w.send(command{kind: cmdStart, interval: interval}); err != nil {
		return err
	}
	w.setInterval(interval)
	w.logger.Info("worker started",
		logging.String(logging.FieldEventType, "worker_started"),
		logging.Duration("interval", interval),
	)
	return nil
}

// Stop halts future ticks. It returns after any tick in flight has finished.
// Stopping a stopped or closed worker is a no-op.
func (w *worker) Stop() {
	if err := w.send(command{kind: cmdStop}); err != nil {
		return
	}
	w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))
}

// SetInterval changes the period used for subsequent ticks.
func (w *worker) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if err := w.send(command{kind: cmdSetInterval, interval: interval}); err != nil {
		return err
	}
	w.setInterval(interval)
	w.logger.Debug("interval updated", logging.Duration("interval", interval))
	return nil
}

// Running reports whether ticks are currently scheduled.
func (w *worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Counter returns the next counter value the worker will act on.
func (w *worker) Counter() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counter
}

// Stats returns a snapshot of the worker's configuration and counters.
func (w *worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Name:        w.name,
		Running:     w.running,
		Dir:         w.cfg.Dir,
		Interval:    w.cfg.Interval,
		Counter:     w.counter,
		Ticks:       w.ticks,
		Warnings:    w.warnings,
		LastWarning: w.lastWarning,
	}
}

// Close stops the worker loop and waits for it to exit. It is idempotent.
func (w *worker) Close() {
	w.closeOnce.Do(func() {
		close(w.quit)
	})
	<-w.done
}

func (w *worker) send(cmd command) error {
	cmd.ack = make(chan struct{})
	select {
	case w.inbox <- cmd:
	case <-w.done:
		return ErrClosed
	}
	<-cmd.ack
	return nil
}

func (w *worker) loop() {
	defer close(w.done)

	ticker := time.NewTicker(time.Hour)
	ticker.Stop()
	defer ticker.Stop()
	var tickC <-chan time.Time

	for {
		select {
		case <-w.quit:
			w.setRunning(false)
			return
		case cmd := <-w.inbox:
			switch cmd.kind {
			case cmdStart:
				ticker.Reset(cmd.interval)
				tickC = ticker.C
				w.setRunning(true)
			case cmdStop:
				ticker.Stop()
				tickC = nil
				w.setRunning(false)
			case cmdSetInterval:
				if tickC != nil {
					ticker.Reset(cmd.interval)
				}
			}
			close(cmd.ack)
		case <-tickC:
			w.tick()
		}
	}
}

// setInterval records a period the loop has already acknowledged.
func (w *worker) setInterval(interval time.Duration) {
	w.mu.Lock()
	w.cfg.Interval = interval
	w.mu.Unlock()
}

func (w *worker) setRunning(running bool) {
	w.mu.Lock()
	w.running = running
	w.mu.Unlock()
}

// tick performs one unit of work. The directory and counter are captured
// under the lock; the counter advances before any I/O so it always names the
// next file to attempt.
func (w *worker) tick() TickResult {
	w.mu.Lock()
	dir := w.cfg.Dir
	if strings.TrimSpace(dir) == "" {
		w.ticks++
		w.mu.Unlock()
		result := TickResult{Worker: w.name, Counter: -1, Outcome: OutcomeSkipped, Err: ErrNoDirectory, At: time.Now()}
		w.warn(result, "tick skipped; no target directory", "worker_dir_unset",
			"set a directory with the path command", "no file processed this tick")
		w.notify(result)
		return result
	}
	n := w.counter
	w.counter++
	w.ticks++
	w.mu.Unlock()

	outcome, err := w.act(dir, n)
	result := TickResult{
		Worker:  w.name,
		Counter: n,
		File:    FileName(n),
		Dir:     dir,
		Outcome: outcome,
		Err:     err,
		At:      time.Now(),
	}

	switch outcome {
	case OutcomeCreated, OutcomeRemoved:
		w.logger.Debug("tick completed",
			logging.String(logging.FieldEventType, "tick_"+string(outcome)),
			logging.Int64(logging.FieldCounter, n),
			logging.String(logging.FieldFile, result.File),
			logging.String(logging.FieldDir, dir),
		)
	case OutcomeMissing:
		w.warn(result, "file to retire does not exist", "tick_file_missing",
			"retirement counter is ahead of or diverged from creation", "counter advanced without removing a file")
	default:
		w.warn(result, "tick failed", "tick_failed",
			"check directory existence and permissions", "counter advanced without a file change")
	}
	w.notify(result)
	return result
}

func (w *worker) warn(result TickResult, msg, eventType, hint, impact string) {
	detail := msg
	if result.Err != nil {
		detail = msg + ": " + result.Err.Error()
	}
	w.mu.Lock()
	w.warnings++
	w.lastWarning = detail
	w.mu.Unlock()

	attrs := []logging.Attr{
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, impact),
	}
	if result.Counter >= 0 {
		attrs = append(attrs,
			logging.Int64(logging.FieldCounter, result.Counter),
			logging.String(logging.FieldFile, result.File),
			logging.String(logging.FieldDir, result.Dir),
		)
	}
	if result.Err != nil {
		attrs = append(attrs, logging.Error(result.Err))
	}
	logging.WarnWithContext(w.logger, msg, eventType, attrs...)
}

func (w *worker) notify(result TickResult) {
	if w.observer != nil {
		w.observer(result)
	}
}
