package config

const (
	defaultLogDir           = "~/.local/share/docmill/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultQuietIntervalMS  = 300
	defaultSweepIntervalMS  = 100
	defaultMinFreeMiB       = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Convert: Convert{
			ValidatePDF: true,
			MinFreeMiB:  defaultMinFreeMiB,
		},
		Watch: Watch{
			QuietIntervalMS: defaultQuietIntervalMS,
			SweepIntervalMS: defaultSweepIntervalMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
