package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// BackgroundImage is shown during worship whenever no hymn is
	// presented. Empty means a plain backdrop.
	BackgroundImage string `koanf:"background_image"`

	// SurfaceTarget is the device or file the text surface renders to,
	// e.g. "/dev/tty2". Empty disables the real surface.
	SurfaceTarget string `koanf:"surface_target"`

	// Watcher selects display detection: "auto", "dbus", "drm" or "none"
	Watcher string `koanf:"watcher"`

	LibraryDB   string `koanf:"library_db"`   // path to the hymn database
	SnapshotDir string `koanf:"snapshot_dir"` // session snapshot directory

	AutoPresentDelaySeconds int `koanf:"auto_present_delay_seconds"`
	AutoAdvanceDelaySeconds int `koanf:"auto_advance_delay_seconds"`

	LogFile string `koanf:"log_file"`
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths())
}

// LoadFrom loads config files in order of priority (last wins).
// Missing files are skipped.
func LoadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.BackgroundImage = expandPath(cfg.BackgroundImage)
	cfg.LibraryDB = expandPath(cfg.LibraryDB)
	cfg.SnapshotDir = expandPath(cfg.SnapshotDir)
	cfg.LogFile = expandPath(cfg.LogFile)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/cantor/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cantor", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// WatcherBackend returns the watcher selection with the default applied.
func (c *Config) WatcherBackend() string {
	switch c.Watcher {
	case "dbus", "drm", "none":
		return c.Watcher
	default:
		return "auto"
	}
}

// AutoPresentDelay returns the auto-present countdown with the default
// applied.
func (c *Config) AutoPresentDelay() time.Duration {
	if c.AutoPresentDelaySeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.AutoPresentDelaySeconds) * time.Second
}

// AutoAdvanceDelay returns the auto-advance countdown with the default
// applied.
func (c *Config) AutoAdvanceDelay() time.Duration {
	if c.AutoAdvanceDelaySeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.AutoAdvanceDelaySeconds) * time.Second
}
