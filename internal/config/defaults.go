package config

const (
	defaultStateDir             = "~/.local/share/recsort"
	defaultMaxFilesPerDirectory = 500
	defaultMinEventDeltaDays    = 4
	defaultFilenamePolicy       = PolicySequential
	defaultNoExtensionDir       = "_NO_EXTENSION"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Sort: Sort{
			MaxFilesPerDirectory: defaultMaxFilesPerDirectory,
			MinEventDeltaDays:    defaultMinEventDeltaDays,
			FilenamePolicy:       defaultFilenamePolicy,
			ImageExtensions:      []string{"jpg"},
			NoExtensionDir:       defaultNoExtensionDir,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
