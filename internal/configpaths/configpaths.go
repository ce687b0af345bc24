// Package configpaths resolves XDG-ish locations for crossputctl's config
// file and log file defaults, the same layered lookup VIIPER used for its
// server config.
package configpaths

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "crossputctl"

// ConfigDir returns $XDG_CONFIG_HOME/crossputctl, falling back to
// ~/.config/crossputctl.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns $XDG_STATE_HOME/crossputctl, falling back to
// ~/.local/state/crossputctl, used for the default log file location.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName)
	}
	return filepath.Join(home, ".local", "state", appName)
}

// DefaultConfigFile returns the conventional config file path, preferring
// an existing TOML file over an existing YAML one, and falling back to the
// TOML path if neither exists yet.
func DefaultConfigFile() string {
	toml := filepath.Join(ConfigDir(), "config.toml")
	yaml := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(toml); err == nil {
		return toml
	}
	if _, err := os.Stat(yaml); err == nil {
		return yaml
	}
	return toml
}

// ConfigCandidatePaths returns the (yaml, toml) candidate lists kong's
// layered Configuration loaders should consult. An explicit userCfg ending
// in .yaml/.yml or .toml is the only candidate, in the list matching its
// extension; otherwise the XDG defaults are used. A path that doesn't exist
// is still included; kong's loaders silently skip missing files.
func ConfigCandidatePaths(userCfg string) (yamlPaths, tomlPaths []string) {
	dir := ConfigDir()
	defaultYAML := filepath.Join(dir, "config.yaml")
	defaultTOML := filepath.Join(dir, "config.toml")

	switch {
	case strings.HasSuffix(userCfg, ".yaml") || strings.HasSuffix(userCfg, ".yml"):
		return []string{userCfg}, nil
	case strings.HasSuffix(userCfg, ".toml"):
		return nil, []string{userCfg}
	default:
		return []string{defaultYAML}, []string{defaultTOML}
	}
}

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
