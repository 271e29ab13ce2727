package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dirchurn/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "dirchurn", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if cfg.Paths.MonitoredDir != filepath.Join(cwd, "monitored_folder") {
		t.Fatalf("unexpected monitored dir: %q", cfg.Paths.MonitoredDir)
	}
	if cfg.Producer.Interval() != time.Second {
		t.Fatalf("unexpected producer interval: %v", cfg.Producer.Interval())
	}
	if cfg.Consumer.Interval() != 5*time.Second {
		t.Fatalf("unexpected consumer interval: %v", cfg.Consumer.Interval())
	}
	if cfg.Producer.Autostart || cfg.Consumer.Autostart {
		t.Fatal("expected workers not to autostart by default")
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if cfg.Paths.APIBind != "127.0.0.1:7490" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.MonitoredDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if got := cfg.SocketPath(); got != filepath.Join(wantLogDir, "dirchurn.sock") {
		t.Fatalf("unexpected socket path %q", got)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dirchurn.toml")

	type payload struct {
		Paths struct {
			MonitoredDir string `toml:"monitored_dir"`
			APIBind      string `toml:"api_bind"`
		} `toml:"paths"`
		Producer struct {
			IntervalMillis int  `toml:"interval_ms"`
			Autostart      bool `toml:"autostart"`
		} `toml:"producer"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.MonitoredDir = filepath.Join(tempDir, "churn")
	custom.Paths.APIBind = "  "
	custom.Producer.IntervalMillis = 2500
	custom.Producer.Autostart = true
	custom.Logging.Format = " JSON "
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Paths.MonitoredDir != filepath.Join(tempDir, "churn") {
		t.Fatalf("unexpected monitored dir %q", cfg.Paths.MonitoredDir)
	}
	if cfg.Paths.APIBind != "" {
		t.Fatalf("expected blank api bind to stay disabled, got %q", cfg.Paths.APIBind)
	}
	if cfg.Producer.IntervalMillis != 2500 || !cfg.Producer.Autostart {
		t.Fatalf("unexpected producer section: %+v", cfg.Producer)
	}
	if cfg.Consumer.IntervalMillis != 5000 {
		t.Fatalf("expected consumer default to survive, got %d", cfg.Consumer.IntervalMillis)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsOutOfRangeInterval(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "dirchurn.toml")
	if err := os.WriteFile(configPath, []byte("[consumer]\ninterval_ms = 500\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "consumer.interval_ms") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "dirchurn.toml")
	if err := os.WriteFile(configPath, []byte("[producer]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestAPITokenEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DIRCHURN_API_TOKEN", " secret ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestValidateIntervalMillis(t *testing.T) {
	cases := []struct {
		ms      int
		wantErr bool
	}{
		{999, true},
		{1000, false},
		{5000, false},
		{10000, false},
		{10001, true},
		{-1, true},
	}
	for _, tc := range cases {
		err := config.ValidateIntervalMillis("producer.interval_ms", tc.ms)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateIntervalMillis(%d) err=%v wantErr=%v", tc.ms, err, tc.wantErr)
		}
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[producer]") {
		t.Fatalf("expected sample to include producer section")
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(out, "interval_ms = 1000") {
		t.Fatalf("expected producer interval in encoded config, got:\n%s", out)
	}
}

func TestNotificationsTopicValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	good := filepath.Join(dir, "good.toml")
	if err := os.WriteFile(good, []byte("[notifications]\nntfy_topic = \" https://ntfy.sh/churn \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err := config.Load(good)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/churn" {
		t.Fatalf("unexpected topic %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Notifications.RequestTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Notifications.RequestTimeout())
	}
	if !cfg.Notifications.OnEmpty || !cfg.Notifications.OnOverloaded {
		t.Fatal("expected state alerts enabled by default")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[notifications]\nntfy_topic = \"churn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(bad); err == nil || !strings.Contains(err.Error(), "notifications.ntfy_topic") {
		t.Fatalf("expected topic validation error, got %v", err)
	}
}
