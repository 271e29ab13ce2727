package config

const (
	defaultConfigPath          = "~/.config/dirchurn/config.toml"
	projectConfigName          = "dirchurn.toml"
	defaultMonitoredDir        = "monitored_folder"
	defaultLogDir              = "~/.local/share/dirchurn/logs"
	defaultAPIBind             = "127.0.0.1:7490"
	defaultProducerIntervalMs  = 1000
	defaultConsumerIntervalMs  = 5000
	defaultControlRatePerMin   = 120
	defaultJournalRetentionDay = 14
	defaultNtfyTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30

	// MinIntervalMillis and MaxIntervalMillis bound the worker period accepted
	// from operators.
	MinIntervalMillis = 1000
	MaxIntervalMillis = 10000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MonitoredDir: defaultMonitoredDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Producer: Worker{IntervalMillis: defaultProducerIntervalMs},
		Consumer: Worker{IntervalMillis: defaultConsumerIntervalMs},
		API:      API{ControlRatePerMinute: defaultControlRatePerMin},
		Journal: Journal{
			Enabled:       true,
			RetentionDays: defaultJournalRetentionDay,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
			OnEmpty:               true,
			OnOverloaded:          true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
