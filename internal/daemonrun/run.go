package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"dirchurn/internal/config"
	"dirchurn/internal/daemon"
	"dirchurn/internal/ipc"
	"dirchurn/internal/journal"
	"dirchurn/internal/logging"
	"dirchurn/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the dirchurn daemon runtime loop and blocks until cmdCtx is
// canceled or the process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	stamp := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("dirchurn-%s.log", stamp))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	d, err := daemon.New(cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// The pid file and log pointer belong to whichever instance holds the lock.
	if err := d.AcquireLock(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update dirchurn.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "dirchurn-*.log", Exclude: []string{logPath}},
	)
	logPreflight(logger, cfg)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	if err := d.AttachJournal(openJournal(signalCtx, logger, cfg, runID)); err != nil {
		return err
	}
	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("dirchurn daemon ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("socket", cfg.SocketPath()),
		logging.String("log_path", logPath),
	)

	<-signalCtx.Done()
	logger.Info("dirchurn daemon shutting down")
	return nil
}

// openJournal opens the activity journal and prunes expired rows. Failures
// are logged and disable the journal for this run.
func openJournal(ctx context.Context, logger *slog.Logger, cfg *config.Config, runID string) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.Open(cfg.JournalPath(), runID)
	if err != nil {
		logging.WarnWithContext(logger, "activity journal unavailable", "journal_open_failed",
			logging.String("path", cfg.JournalPath()),
			logging.String(logging.FieldErrorHint, "delete the journal file if the schema changed"),
			logging.String(logging.FieldImpact, "tick outcomes will not be recorded this run"),
			logging.Error(err),
		)
		return nil
	}
	if cfg.Journal.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.Journal.RetentionDays)
		if removed, err := store.Prune(ctx, cutoff); err != nil {
			logger.Debug("journal prune failed", logging.Error(err))
		} else if removed > 0 {
			logger.Info("journal pruned", logging.Int64("removed", removed))
		}
	}
	return store
}

func logPreflight(logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix the reported path or setting"),
			logging.String(logging.FieldImpact, "workers may log I/O warnings"),
		)
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "dirchurn.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
