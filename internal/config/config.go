package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// ObjectStore is the base URL of the object store service.
	ObjectStore string `yaml:"objectstore" json:"objectstore"`

	// GraphLayer is the base URL of the graph layer service.
	GraphLayer string `yaml:"graphlayer" json:"graphlayer"`

	// ObjectStoreToken is sent as X-API-Token on object store requests.
	// Empty disables the header.
	ObjectStoreToken string `yaml:"objectstore_token" json:"objectstore_token"`

	// GraphLayerToken is sent as a Bearer token on graph layer requests.
	GraphLayerToken string `yaml:"graphlayer_token" json:"graphlayer_token"`

	// Timezone is the IANA timezone all event timestamps are normalized to
	// before bucket derivation (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// HTTPTimeoutSeconds bounds every single request to either service.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" json:"http_timeout_seconds"`

	// Watch is a cron-style schedule string (e.g. "*/15 * * * *") for
	// periodic re-import. Empty disables watch mode.
	Watch string `yaml:"watch" json:"watch"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		ObjectStore:        "http://localhost:5000",
		GraphLayer:         "http://localhost:5001",
		ObjectStoreToken:   "",
		GraphLayerToken:    "",
		Timezone:           "Europe/Berlin",
		HTTPTimeoutSeconds: 15,
		Watch:              "",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.ObjectStore == "" {
		c.ObjectStore = "http://localhost:5000"
	}
	if c.GraphLayer == "" {
		c.GraphLayer = "http://localhost:5001"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Berlin"
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = 15
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600 (tokens live in here).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".calimport-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
