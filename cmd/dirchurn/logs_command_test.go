package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dirchurn/internal/testsupport"
)

func TestLogsCommandFiltersTail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}

	runLog := filepath.Join(cfg.Paths.LogDir, "dirchurn-20260101T000000.000Z.log")
	body := strings.Join([]string{
		`level=INFO msg="worker started" component=producer`,
		`level=WARN msg="file to retire does not exist" component=consumer`,
		`level=INFO msg="tick completed" component=producer`,
		`level=WARN msg="tick failed" component=producer`,
	}, "\n") + "\n"
	if err := os.WriteFile(runLog, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(runLog, filepath.Join(cfg.Paths.LogDir, "dirchurn.log")); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "3", "--grep", "warn"}, "", configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if len(got) != 2 || !strings.Contains(got[0], "retire") || !strings.Contains(got[1], "tick failed") {
		t.Fatalf("unexpected logs output:\n%s", out)
	}
}

func TestLogsCommandWithoutLog(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	_, _, err := runCLI(t, []string{"logs"}, "", configPath)
	if err == nil || !strings.Contains(err.Error(), "no daemon log") {
		t.Fatalf("expected missing log error, got %v", err)
	}
}
