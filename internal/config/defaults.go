package config

const (
	defaultDataDir   = "~/.local/share/chara"
	defaultImagesDir = "~/.local/share/chara/images"
	defaultLogDir    = "~/.local/share/chara/logs"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultPollInterval = 300
	defaultBatchLimit   = 100
	defaultFetchTimeout = 60

	// Duplicate rejection favors precision; reverse search favors recall.
	// Both are independent tuning constants, measured in fingerprint bits.
	defaultDuplicateThreshold = 3
	defaultMatchThreshold     = 5

	defaultTopK     = 10
	defaultHashSize = 8

	defaultBind            = "127.0.0.1:7820"
	defaultSessionTTLHours = 24
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ImagesDir: defaultImagesDir,
			LogDir:    defaultLogDir,
		},
		Scraper: Scraper{
			Enabled:            false,
			PollInterval:       defaultPollInterval,
			BatchLimit:         defaultBatchLimit,
			DuplicateThreshold: defaultDuplicateThreshold,
			FetchTimeout:       defaultFetchTimeout,
		},
		Search: Search{
			MatchThreshold: defaultMatchThreshold,
			DefaultTopK:    defaultTopK,
		},
		Hash: Hash{
			Size: defaultHashSize,
		},
		Server: Server{
			Bind:            defaultBind,
			SessionTTLHours: defaultSessionTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
