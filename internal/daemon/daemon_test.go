package daemon_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dirchurn/internal/api"
	"dirchurn/internal/config"
	"dirchurn/internal/daemon"
	"dirchurn/internal/journal"
	"dirchurn/internal/logging"
	"dirchurn/internal/monitor"
	"dirchurn/internal/testsupport"
)

func startDaemon(t *testing.T, cfg *config.Config, store *journal.Store) *daemon.Daemon {
	t.Helper()
	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)

	if !d.Status().Running {
		t.Fatal("expected daemon to report running")
	}
	if _, err := os.Stat(cfg.Paths.MonitoredDir); err != nil {
		t.Fatalf("expected monitored dir to be created: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	startDaemon(t, cfg, nil)

	other, err := daemon.New(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	defer other.Close()
	if err := other.AcquireLock(); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning from AcquireLock, got %v", err)
	}
	if err := other.Start(context.Background()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning from Start, got %v", err)
	}
}

func TestIntervalRangeIsEnforced(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)

	cases := []struct {
		ms      int
		wantErr bool
	}{
		{0, true},
		{999, true},
		{1000, false},
		{7500, false},
		{10000, false},
		{10001, true},
	}
	for _, tc := range cases {
		errCreate := d.SetCreationInterval(tc.ms)
		errDelete := d.SetDeletionInterval(tc.ms)
		for _, err := range []error{errCreate, errDelete} {
			if tc.wantErr && !errors.Is(err, daemon.ErrIntervalOutOfRange) {
				t.Fatalf("interval %d: expected ErrIntervalOutOfRange, got %v", tc.ms, err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("interval %d: unexpected error %v", tc.ms, err)
			}
		}
	}
	status := d.Status()
	if status.Producer.Interval != 10*time.Second || status.Consumer.Interval != 10*time.Second {
		t.Fatalf("unexpected intervals %v/%v", status.Producer.Interval, status.Consumer.Interval)
	}
}

func TestUpdatePathCreatesDirectoryAndBroadcasts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)

	target := filepath.Join(testsupport.BaseDir(cfg), "elsewhere", "nested")
	if err := d.UpdatePath(target); err != nil {
		t.Fatalf("UpdatePath: %v", err)
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be created: %v", target, err)
	}
	status := d.Status()
	if status.Dir != target || status.Producer.Dir != target || status.Consumer.Dir != target {
		t.Fatalf("path not broadcast: %+v", status)
	}
	if status.Snapshot.Dir != target || status.Snapshot.State != monitor.StateEmpty {
		t.Fatalf("unexpected snapshot %+v", status.Snapshot)
	}
	if err := d.UpdatePath("   "); !errors.Is(err, daemon.ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
}

func TestConcurrentUpdatePathKeepsComponentsAligned(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)
	base := testsupport.BaseDir(cfg)

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if err := d.UpdatePath(filepath.Join(base, fmt.Sprintf("dir-%d", i))); err != nil {
					t.Errorf("UpdatePath: %v", err)
				}
			}(i)
		}
		wg.Wait()

		status := d.Status()
		if status.Producer.Dir != status.Dir || status.Consumer.Dir != status.Dir || status.Snapshot.Dir != status.Dir {
			t.Fatalf("round %d: components diverged: dir=%q producer=%q consumer=%q snapshot=%q",
				round, status.Dir, status.Producer.Dir, status.Consumer.Dir, status.Snapshot.Dir)
		}
	}
}

func TestStoppedDaemonSnapshotFollowsUpdatedPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)
	d.Stop()

	target := filepath.Join(testsupport.BaseDir(cfg), "after-stop")
	if err := d.UpdatePath(target); err != nil {
		t.Fatalf("UpdatePath: %v", err)
	}
	testsupport.WriteManagedFiles(t, target, 2)

	snap := d.Status().Snapshot
	if snap.Dir != target || snap.Count() != 2 || snap.State != monitor.StateNormal {
		t.Fatalf("expected listing of %s, got %+v", target, snap)
	}
}

func TestSnapshotFollowsDirectoryContents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)

	testsupport.WriteManagedFiles(t, cfg.Paths.MonitoredDir, 25)
	testsupport.Eventually(t, 5*time.Second, func() bool {
		snap := d.Snapshot()
		return snap.State == monitor.StateOverloaded && snap.Count() == 25
	}, "expected overloaded snapshot, got %+v", d.Snapshot())

	if got := len(d.CurrentFiles()); got != 25 {
		t.Fatalf("expected 25 files, got %d", got)
	}

	if err := os.Mkdir(filepath.Join(cfg.Paths.MonitoredDir, "keep"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	removed, err := d.EmptyFolder()
	if err != nil {
		t.Fatalf("EmptyFolder: %v", err)
	}
	if removed != 25 {
		t.Fatalf("expected 25 removed, got %d", removed)
	}
	testsupport.Eventually(t, 5*time.Second, func() bool {
		return d.Snapshot().State == monitor.StateEmpty
	}, "expected empty snapshot, got %+v", d.Snapshot())
	if testsupport.CountEntries(t, cfg.Paths.MonitoredDir) != 1 {
		t.Fatal("expected subdirectory to survive EmptyFolder")
	}
}

func TestToggleStartsAndStopsBothWorkers(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithIntervals(10000, 10000))
	d := startDaemon(t, cfg, nil)

	running, err := d.Toggle()
	if err != nil || !running {
		t.Fatalf("expected toggle to start workers: running=%v err=%v", running, err)
	}
	status := d.Status()
	if !status.Producer.Running || !status.Consumer.Running {
		t.Fatalf("expected both workers running: %+v", status)
	}

	d.StopDeleting()
	running, err = d.Toggle()
	if err != nil || running {
		t.Fatalf("expected toggle to stop workers: running=%v err=%v", running, err)
	}
	status = d.Status()
	if status.Producer.Running || status.Consumer.Running {
		t.Fatalf("expected both workers stopped: %+v", status)
	}
}

func TestProducerCreatesFilesWhileRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithIntervals(1000, 10000))
	store, err := journal.Open(cfg.JournalPath(), "")
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	d := startDaemon(t, cfg, store)

	if err := d.StartCreating(); err != nil {
		t.Fatalf("StartCreating: %v", err)
	}
	first := filepath.Join(cfg.Paths.MonitoredDir, "file_0000.txt")
	testsupport.Eventually(t, 5*time.Second, func() bool {
		_, err := os.Stat(first)
		return err == nil
	}, "expected %s to be created", first)
	d.StopCreating()

	counter := d.Status().Producer.Counter
	if counter < 1 {
		t.Fatalf("expected producer counter to advance, got %d", counter)
	}

	entries, err := d.Journal(context.Background(), 50)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	var ticks, states int
	for _, entry := range entries {
		switch entry.Kind {
		case journal.KindTick:
			ticks++
		case journal.KindState:
			states++
		}
	}
	if ticks == 0 || states == 0 {
		t.Fatalf("expected tick and state entries, got %+v", entries)
	}
}

func TestExecuteDispatchesCommands(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := startDaemon(t, cfg, nil)
	ctx := context.Background()

	if _, err := d.Execute(ctx, api.ControlRequest{Command: api.CommandSetCreationInterval, IntervalMillis: 2000}); err != nil {
		t.Fatalf("set interval: %v", err)
	}
	if d.Status().Producer.Interval != 2*time.Second {
		t.Fatal("expected producer interval 2s")
	}
	if _, err := d.Execute(ctx, api.ControlRequest{Command: api.CommandStartDeleting}); err != nil {
		t.Fatalf("start deleting: %v", err)
	}
	if !d.Status().Consumer.Running {
		t.Fatal("expected consumer running")
	}
	if _, err := d.Execute(ctx, api.ControlRequest{Command: api.CommandStopDeleting}); err != nil {
		t.Fatalf("stop deleting: %v", err)
	}
	if _, err := d.Execute(ctx, api.ControlRequest{Command: "explode"}); !errors.Is(err, daemon.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}
