package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"dirchurn/internal/churn"
	"dirchurn/internal/config"
	"dirchurn/internal/fileutil"
	"dirchurn/internal/journal"
	"dirchurn/internal/logging"
	"dirchurn/internal/monitor"
	"dirchurn/internal/notifications"
)

var (
	// ErrIntervalOutOfRange rejects periods outside the operator range.
	ErrIntervalOutOfRange = errors.New("interval out of range")
	// ErrPathRequired rejects blank directory updates.
	ErrPathRequired = errors.New("directory path is required")
	// ErrUnknownCommand is returned by Execute for unrecognised commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrWatchFailed marks a path change that applied everywhere but could
	// not be registered with the directory watcher.
	ErrWatchFailed = errors.New("directory watch failed")
	// ErrJournalDisabled is returned by Journal when no store is attached.
	ErrJournalDisabled = errors.New("journal disabled")
	// ErrAlreadyRunning means another process holds the daemon lock.
	ErrAlreadyRunning = errors.New("another dirchurn daemon instance is already running")
)

// Daemon owns the producer, consumer, and directory monitor, and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal *journal.Store

	notifier notifications.Service
	notifyWG sync.WaitGroup

	producer *churn.Producer
	consumer *churn.Consumer

	lockPath string
	lock     *flock.Flock

	// pathMu serializes directory broadcasts and monitor replacement so the
	// workers and the monitor always agree on dir. It is taken before mu and
	// is never held by the monitor's notify callback.
	pathMu sync.Mutex

	// mu guards dir, monitor, snapshot, and api.
	mu       sync.Mutex
	dir      string
	monitor  *monitor.Monitor
	snapshot monitor.Snapshot
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	RunID        string
	Dir          string
	Snapshot     monitor.Snapshot
	Producer     churn.Stats
	Consumer     churn.Stats
	JournalPath  string
	LockFilePath string
}

// New constructs a daemon. The journal is optional. Workers are created
// stopped; Start applies autostart settings.
func New(cfg *config.Config, store *journal.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		journal:  store,
		dir:      cfg.Paths.MonitoredDir,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		notifier: notifications.NewService(cfg),
	}
	d.producer = churn.NewProducer(d.dir, cfg.Producer.Interval(),
		churn.WithLogger(logger), churn.WithObserver(d.recordTick))
	d.consumer = churn.NewConsumer(d.dir, cfg.Consumer.Interval(),
		churn.WithLogger(logger), churn.WithObserver(d.recordTick))
	return d, nil
}

// AcquireLock takes the single-instance lock without starting anything.
// Callers that touch shared runtime files (pid file, log pointer) take it
// first; Start reuses a lock already held.
func (d *Daemon) AcquireLock() error {
	if d.lock.Locked() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	return nil
}

// AttachJournal sets the activity journal. It must be called before Start.
func (d *Daemon) AttachJournal(store *journal.Store) error {
	if d.running.Load() {
		return errors.New("attach journal: daemon already running")
	}
	d.journal = store
	return nil
}

// Start acquires the daemon lock, creates the monitored directory, starts
// watching it, and launches the HTTP API when configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.AcquireLock(); err != nil {
		return err
	}

	d.pathMu.Lock()
	defer d.pathMu.Unlock()

	dir := d.Dir()
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("create monitored directory: %w", err)
		}
	}

	mon, err := monitor.New(dir, monitor.WithLogger(d.logger), monitor.WithNotify(d.onSnapshot))
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("start monitor: %w", err)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	apiSrv, err := newAPIServer(d.cfg, d, d.logger)
	if err == nil {
		err = apiSrv.start(d.ctx)
	}
	if err != nil {
		_ = mon.Close()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		_ = d.lock.Unlock()
		return err
	}

	d.mu.Lock()
	d.monitor = mon
	d.api = apiSrv
	d.mu.Unlock()
	d.running.Store(true)

	if d.cfg.Producer.Autostart {
		if err := d.StartCreating(); err != nil {
			d.logger.Warn("producer autostart failed", logging.Error(err))
		}
	}
	if d.cfg.Consumer.Autostart {
		if err := d.StartDeleting(); err != nil {
			d.logger.Warn("consumer autostart failed", logging.Error(err))
		}
	}

	d.logger.Info("dirchurn daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldDir, dir),
	)
	return nil
}

// Stop halts both workers, stops watching, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.producer.Stop()
	d.consumer.Stop()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.mu.Lock()
	apiSrv := d.api
	d.api = nil
	d.mu.Unlock()
	// In-flight handlers may need pathMu; drain them first.
	apiSrv.stop()

	d.pathMu.Lock()
	d.mu.Lock()
	mon := d.monitor
	d.monitor = nil
	d.mu.Unlock()
	if mon != nil {
		if err := mon.Close(); err != nil {
			d.logger.Debug("monitor close failed", logging.Error(err))
		}
	}
	// Snapshot falls back to listing dir directly until the next Start.
	d.mu.Lock()
	d.snapshot = monitor.Snapshot{}
	d.mu.Unlock()
	d.pathMu.Unlock()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.String(logging.FieldErrorHint, "remove the lock file if the next start fails"),
			logging.Error(err),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("dirchurn daemon stopped")
}

// Close stops the daemon and releases the workers and journal.
func (d *Daemon) Close() error {
	d.Stop()
	if d.lock.Locked() {
		_ = d.lock.Unlock()
	}
	d.producer.Close()
	d.consumer.Close()
	d.notifyWG.Wait()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Dir returns the current monitored directory.
func (d *Daemon) Dir() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir
}

// StartCreating starts the producer with its configured interval.
func (d *Daemon) StartCreating() error {
	return d.producer.Start(0)
}

// StopCreating stops the producer.
func (d *Daemon) StopCreating() {
	d.producer.Stop()
}

// SetCreationInterval changes the producer period.
func (d *Daemon) SetCreationInterval(ms int) error {
	if err := checkInterval(ms); err != nil {
		return err
	}
	return d.producer.SetInterval(time.Duration(ms) * time.Millisecond)
}

// StartDeleting starts the consumer with its configured interval.
func (d *Daemon) StartDeleting() error {
	return d.consumer.Start(0)
}

// StopDeleting stops the consumer.
func (d *Daemon) StopDeleting() {
	d.consumer.Stop()
}

// SetDeletionInterval changes the consumer period.
func (d *Daemon) SetDeletionInterval(ms int) error {
	if err := checkInterval(ms); err != nil {
		return err
	}
	return d.consumer.SetInterval(time.Duration(ms) * time.Millisecond)
}

// Toggle starts both workers when neither is running and stops both
// otherwise. It reports whether the workers are running afterwards.
func (d *Daemon) Toggle() (bool, error) {
	if d.producer.Running() || d.consumer.Running() {
		d.StopCreating()
		d.StopDeleting()
		return false, nil
	}
	if err := d.StartCreating(); err != nil {
		return false, err
	}
	if err := d.StartDeleting(); err != nil {
		d.StopCreating()
		return false, err
	}
	return true, nil
}

// UpdatePath creates dir if needed and points the producer, consumer, and
// monitor at it. A watch failure is returned after every component has
// switched.
func (d *Daemon) UpdatePath(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ErrPathRequired
	}
	abs, err := config.ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	d.pathMu.Lock()
	defer d.pathMu.Unlock()

	d.mu.Lock()
	previous := d.dir
	d.dir = abs
	mon := d.monitor
	d.mu.Unlock()

	d.producer.Configure(abs)
	d.consumer.Configure(abs)

	var watchErr error
	if mon != nil {
		watchErr = mon.Reconfigure(abs)
	}
	d.logger.Info("monitored directory updated",
		logging.String(logging.FieldEventType, "dir_updated"),
		logging.String(logging.FieldDir, abs),
		logging.String("previous_dir", previous),
	)
	if watchErr != nil {
		return fmt.Errorf("%w: %w", ErrWatchFailed, watchErr)
	}
	return nil
}

// CurrentFiles lists regular files in the monitored directory.
func (d *Daemon) CurrentFiles() []string {
	d.mu.Lock()
	mon := d.monitor
	dir := d.dir
	d.mu.Unlock()
	if mon != nil {
		return mon.CurrentFiles()
	}
	return monitor.ListFiles(dir)
}

// EmptyFolder removes every regular file in the monitored directory.
func (d *Daemon) EmptyFolder() (int, error) {
	dir := d.Dir()
	if dir == "" {
		return 0, ErrPathRequired
	}
	removed, err := fileutil.EmptyDir(dir)
	d.logger.Info("monitored directory emptied",
		logging.String(logging.FieldEventType, "dir_emptied"),
		logging.String(logging.FieldDir, dir),
		logging.Int("removed", removed),
	)
	if err != nil {
		return removed, fmt.Errorf("empty folder: %w", err)
	}
	return removed, nil
}

// Snapshot returns the latest directory classification. Before the monitor
// has reported, the directory is listed directly.
func (d *Daemon) Snapshot() monitor.Snapshot {
	d.mu.Lock()
	snap := d.snapshot
	dir := d.dir
	d.mu.Unlock()
	if snap.TakenAt.IsZero() {
		files := monitor.ListFiles(dir)
		return monitor.Snapshot{State: monitor.Classify(len(files)), Files: files, Dir: dir, TakenAt: time.Now()}
	}
	return snap
}

// Journal returns the most recent activity entries.
func (d *Daemon) Journal(ctx context.Context, limit int) ([]journal.Entry, error) {
	if d.journal == nil {
		return nil, ErrJournalDisabled
	}
	return d.journal.Recent(ctx, limit)
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Dir:          d.Dir(),
		Snapshot:     d.Snapshot(),
		Producer:     d.producer.Stats(),
		Consumer:     d.consumer.Stats(),
		LockFilePath: d.lockPath,
	}
	if d.journal != nil {
		status.RunID = d.journal.RunID()
		status.JournalPath = d.journal.Path()
	}
	return status
}

func checkInterval(ms int) error {
	if ms < config.MinIntervalMillis || ms > config.MaxIntervalMillis {
		return fmt.Errorf("%w: %d ms (allowed %d-%d)", ErrIntervalOutOfRange, ms, config.MinIntervalMillis, config.MaxIntervalMillis)
	}
	return nil
}

func (d *Daemon) recordTick(result churn.TickResult) {
	if d.journal == nil {
		return
	}
	if err := d.journal.RecordTick(context.Background(), result); err != nil {
		logging.WarnWithContext(d.logger, "journal tick write failed", "journal_write_failed",
			logging.String(logging.FieldErrorHint, "check free space and permissions on the journal file"),
			logging.String(logging.FieldImpact, "tick missing from the activity journal"),
			logging.Error(err),
		)
	}
}

func (d *Daemon) onSnapshot(snap monitor.Snapshot) {
	d.mu.Lock()
	previous := d.snapshot
	d.snapshot = snap
	d.mu.Unlock()

	if !previous.TakenAt.IsZero() && previous.State == snap.State && previous.Dir == snap.Dir {
		return
	}
	d.logger.Info("directory state changed",
		logging.String(logging.FieldEventType, "state_changed"),
		logging.String(logging.FieldState, snap.State.String()),
		logging.String("previous_state", previousState(previous)),
		logging.Int(logging.FieldFileCount, snap.Count()),
		logging.String(logging.FieldDir, snap.Dir),
	)
	if d.journal != nil {
		if err := d.journal.RecordState(context.Background(), snap); err != nil {
			logging.WarnWithContext(d.logger, "journal state write failed", "journal_write_failed",
				logging.String(logging.FieldErrorHint, "check free space and permissions on the journal file"),
				logging.String(logging.FieldImpact, "state change missing from the activity journal"),
				logging.Error(err),
			)
		}
	}
	if !previous.TakenAt.IsZero() && previous.State != snap.State {
		d.notifyTransition(previous, snap)
	}
}

// notifyTransition publishes a state alert without blocking the monitor loop.
func (d *Daemon) notifyTransition(previous, snap monitor.Snapshot) {
	var event notifications.Event
	switch snap.State {
	case monitor.StateEmpty:
		event = notifications.EventDirectoryEmpty
	case monitor.StateOverloaded:
		event = notifications.EventDirectoryOverloaded
	default:
		event = notifications.EventDirectoryRecovered
	}
	payload := notifications.Payload{
		"dir":      snap.Dir,
		"count":    strconv.Itoa(snap.Count()),
		"previous": previous.State.String(),
	}
	timeout := d.cfg.Notifications.RequestTimeout() + time.Second

	d.notifyWG.Add(1)
	go func() {
		defer d.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.notifier.Publish(ctx, event, payload); err != nil {
			logging.WarnWithContext(d.logger, "state notification failed", "notification_failed",
				logging.String(logging.FieldState, snap.State.String()),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
				logging.Error(err),
			)
		}
	}()
}

func previousState(snap monitor.Snapshot) string {
	if snap.TakenAt.IsZero() {
		return "unknown"
	}
	return snap.State.String()
}
