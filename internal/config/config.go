// Package config holds the explicit runtime configuration for winevat.
//
// There are no process-wide singletons: a Config is built once at startup
// (file, then environment, then flags) and passed by value into the
// components that need it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config describes where the application state and the Wine distribution
// live. All paths are absolute once Load has returned.
type Config struct {
	// AppRoot is the winevat state directory (logs, bottles).
	AppRoot string `toml:"app_root"`

	// WineRoot is the Wine distribution root; binaries live in WineRoot/bin.
	WineRoot string `toml:"wine_root"`

	// Prefix is the bottle path exported to the tool as WINEPREFIX.
	Prefix string `toml:"prefix"`

	// LogDir is where per-run log files are written.
	LogDir string `toml:"log_dir"`

	// WineDebug is the WINEDEBUG channel spec for tool runs.
	WineDebug string `toml:"wine_debug"`
}

// Default returns the built-in configuration rooted in the user's home
// directory.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, ".local", "share", "winevat")
	return Config{
		AppRoot:   root,
		WineRoot:  filepath.Join(root, "libraries", "wine"),
		Prefix:    filepath.Join(root, "bottles", "default"),
		LogDir:    filepath.Join(root, "logs"),
		WineDebug: "fixme-all",
	}
}

// Load builds a Config with precedence environment > file > defaults.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays WINEVAT_* environment variables on the config.
func applyEnv(cfg *Config) {
	overrides := []struct {
		key   string
		field *string
	}{
		{"WINEVAT_APP_ROOT", &cfg.AppRoot},
		{"WINEVAT_WINE_ROOT", &cfg.WineRoot},
		{"WINEVAT_PREFIX", &cfg.Prefix},
		{"WINEVAT_LOG_DIR", &cfg.LogDir},
		{"WINEVAT_WINE_DEBUG", &cfg.WineDebug},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.field = v
		}
	}
}

// BinDir returns the directory containing the tool binaries. It is also the
// default working directory for tool runs.
func (c Config) BinDir() string {
	return filepath.Join(c.WineRoot, "bin")
}

// WineBinary returns the path of the wine executable.
func (c Config) WineBinary() string {
	return filepath.Join(c.BinDir(), "wine64")
}

// WineserverBinary returns the path of the wineserver executable.
func (c Config) WineserverBinary() string {
	return filepath.Join(c.BinDir(), "wineserver")
}
