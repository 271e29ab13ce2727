package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.MonitoredDir == "" {
		return errors.New("paths.monitored_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if err := ValidateIntervalMillis("producer.interval_ms", c.Producer.IntervalMillis); err != nil {
		return err
	}
	if err := ValidateIntervalMillis("consumer.interval_ms", c.Consumer.IntervalMillis); err != nil {
		return err
	}
	if topic := c.Notifications.NtfyTopic; topic != "" {
		u, err := url.Parse(topic)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("notifications.ntfy_topic: expected an http(s) URL, got %q", topic)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ValidateIntervalMillis checks a worker period against the operator range.
func ValidateIntervalMillis(field string, ms int) error {
	if ms < MinIntervalMillis || ms > MaxIntervalMillis {
		return fmt.Errorf("%s must be between %d and %d, got %d", field, MinIntervalMillis, MaxIntervalMillis, ms)
	}
	return nil
}
