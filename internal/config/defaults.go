package config

const (
	defaultLogDir           = "~/.local/share/taxonsort/logs"
	defaultJournalDir       = "~/.local/share/taxonsort"
	defaultINatBaseURL      = "https://api.inaturalist.org/v1"
	defaultRequestTimeout   = 60
	defaultDelaySeconds     = 2
	defaultCheckpointEvery  = 10
	defaultUnknownSubfamily = "unknown-subfamily"
	defaultUnknownTribe     = "unknown-tribe"
	defaultUnknownGenus     = "unknown-genus"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			JournalDir: defaultJournalDir,
		},
		INaturalist: INaturalist{
			BaseURL:        defaultINatBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Batch: Batch{
			DelaySeconds:    defaultDelaySeconds,
			CheckpointEvery: defaultCheckpointEvery,
		},
		Organize: Organize{
			UnknownSubfamily:  defaultUnknownSubfamily,
			UnknownTribe:      defaultUnknownTribe,
			UnknownGenus:      defaultUnknownGenus,
			OverwriteExisting: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
