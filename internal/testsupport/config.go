package testsupport

import (
	"path/filepath"
	"testing"

	"dirchurn/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The HTTP API is disabled unless WithAPI is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MonitoredDir = filepath.Join(base, "monitored_folder")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAPI enables the HTTP API on an ephemeral loopback port.
func WithAPI(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIBind = "127.0.0.1:0"
		b.cfg.Paths.APIToken = token
	}
}

// WithIntervals overrides both worker periods in milliseconds.
func WithIntervals(producerMillis, consumerMillis int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Producer.IntervalMillis = producerMillis
		b.cfg.Consumer.IntervalMillis = consumerMillis
	}
}

// WithAutostart sets the autostart flags of both workers.
func WithAutostart(producer, consumer bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Producer.Autostart = producer
		b.cfg.Consumer.Autostart = consumer
	}
}

// WithControlRate sets the HTTP control rate limit.
func WithControlRate(perMinute int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.ControlRatePerMinute = perMinute
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
