package monitor

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dirchurn/internal/logging"
)

// Notify receives every snapshot the monitor produces. Calls are serialized.
// The callback must not call Reconfigure or Refresh.
type Notify func(Snapshot)

// Option customizes a Monitor.
type Option func(*Monitor)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithNotify registers the snapshot callback.
func WithNotify(fn Notify) Option {
	return func(m *Monitor) {
		m.notify = fn
	}
}

// Monitor watches one directory and reclassifies it whenever entries are
// created, removed, or renamed.
type Monitor struct {
	logger *slog.Logger
	notify Notify

	mu      sync.Mutex
	dir     string
	watched string

	// emitMu serializes list, classify, and notify so snapshots arrive in order.
	emitMu sync.Mutex
	last   Snapshot

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// New starts watching dir and emits an initial snapshot. A directory that
// cannot be watched is logged; the monitor still runs and can be
// reconfigured later.
func New(dir string, opts ...Option) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	m := &Monitor{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "monitor")

	if err := m.swap(dir); err != nil {
		logging.WarnWithContext(m.logger, "directory not watched", "monitor_watch_failed",
			logging.String(logging.FieldDir, dir),
			logging.String(logging.FieldErrorHint, "create the directory or choose another path"),
			logging.String(logging.FieldImpact, "state changes are only picked up on reconfigure"),
			logging.Error(err),
		)
	}
	go m.loop()
	m.Refresh()
	return m, nil
}

// Dir returns the directory currently being classified.
func (m *Monitor) Dir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

// CurrentFiles lists regular files in the watched directory.
func (m *Monitor) CurrentFiles() []string {
	return ListFiles(m.Dir())
}

// Last returns the most recent snapshot.
func (m *Monitor) Last() Snapshot {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	return m.last
}

// Reconfigure switches the watched directory and reclassifies immediately.
// When the new directory cannot be watched it is still adopted and a
// snapshot is still emitted; the registration error is returned.
func (m *Monitor) Reconfigure(dir string) error {
	err := m.swap(dir)
	m.Refresh()
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Refresh classifies the directory now and delivers the snapshot.
func (m *Monitor) Refresh() Snapshot {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	dir := m.Dir()
	files := ListFiles(dir)
	snap := Snapshot{
		State:   Classify(len(files)),
		Files:   files,
		Dir:     dir,
		TakenAt: time.Now(),
	}
	previous := m.last
	m.last = snap

	if previous.TakenAt.IsZero() || previous.State != snap.State || previous.Dir != snap.Dir {
		m.logger.Debug("directory classified",
			logging.String(logging.FieldEventType, "monitor_classified"),
			logging.String(logging.FieldState, snap.State.String()),
			logging.Int(logging.FieldFileCount, snap.Count()),
			logging.String(logging.FieldDir, dir),
		)
	}
	if m.notify != nil {
		m.notify(snap)
	}
	return snap
}

// Close stops watching. It is safe to call more than once.
func (m *Monitor) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.watcher.Close()
		<-m.done
	})
	return err
}

func (m *Monitor) swap(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watched != "" {
		if err := m.watcher.Remove(m.watched); err != nil {
			m.logger.Debug("remove watch failed", logging.String(logging.FieldDir, m.watched), logging.Error(err))
		}
		m.watched = ""
	}
	m.dir = dir
	if dir == "" {
		return nil
	}
	if err := m.watcher.Add(dir); err != nil {
		return err
	}
	m.watched = dir
	return nil
}

func (m *Monitor) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir != "" && filepath.Clean(filepath.Dir(event.Name)) == filepath.Clean(m.dir)
}

func (m *Monitor) loop() {
	defer close(m.done)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if m.relevant(event) {
				m.Refresh()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(m.logger, "watcher error", "monitor_watcher_error",
				logging.String(logging.FieldErrorHint, "events may have been dropped; listings self-correct on the next event"),
				logging.String(logging.FieldImpact, "state may lag until the next change"),
				logging.Error(err),
			)
			m.Refresh()
		}
	}
}
