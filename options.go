package crossput

// Options configures which backends participate in discovery. The library
// itself only consumes this struct; turning it into a file on disk is
// cmd/crossputctl's job, not this package's.
type Options struct {
	// PollIntervalHintMS suggests a cadence (in milliseconds) to callers
	// driving UpdateAllDevices in a loop; backends never read it directly.
	PollIntervalHintMS int `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`

	// LogLevel is one of "trace", "debug", "info", "warn", "error". It is
	// carried for callers; nothing in this module reads it to set up logging.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// LogFile names a JSON log destination for callers; nothing in this
	// module opens it (crossputctl takes its log file from --log-file).
	LogFile string `json:"log_file" yaml:"log_file" toml:"log_file"`

	// EnabledBackends restricts Discover to providers whose Name() is
	// listed here; an empty slice means every registered backend.
	EnabledBackends []string `json:"enabled_backends" yaml:"enabled_backends" toml:"enabled_backends"`
}

// DefaultOptions returns the zero-config baseline: every backend enabled,
// info-level logging, no log file.
func DefaultOptions() Options {
	return Options{
		PollIntervalHintMS: 16,
		LogLevel:           "info",
	}
}

// BackendEnabled reports whether providerName should participate in
// discovery under these options.
func (o Options) BackendEnabled(providerName string) bool {
	if len(o.EnabledBackends) == 0 {
		return true
	}
	for _, n := range o.EnabledBackends {
		if n == providerName {
			return true
		}
	}
	return false
}
