package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	target := filepath.Join(t.TempDir(), "dirchurn", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "show"}, "", target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, section := range []string{"[paths]", "[producer]", "[consumer]", "interval_ms"} {
		if !strings.Contains(out, section) {
			t.Fatalf("config show missing %s:\n%s", section, out)
		}
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, "", target)
	if err != nil || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("config validate: out=%q err=%v", out, err)
	}
}

func TestConfigValidateRejectsBadInterval(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[producer]\ninterval_ms = 20000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, "", path); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nlog_dir = \""+filepath.Join(t.TempDir(), "logs")+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"test-notify"}, "", path)
	if err != nil || !strings.Contains(out, "Notifications are disabled") {
		t.Fatalf("test-notify: out=%q err=%v", out, err)
	}
}
