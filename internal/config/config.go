// ABOUTME: Coach configuration: JSON file overlaid by environment variables.
// ABOUTME: Also the factory for the storage backend, snapshot reader, and reply generator.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/interchange"
	"github.com/harperreed/coach/internal/storage"
)

// Backends accepted by OpenStorage.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
	BackendBadger = "badger"
)

// DefaultHTTPAddr is where the webhook server listens.
const DefaultHTTPAddr = ":8080"

// Config stores coach configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "charm", or "badger".
	Backend string `json:"backend,omitempty" env:"COACH_BACKEND"`

	// DataDir is the root directory for data storage.
	// SQLite puts coach.db here; Badger uses the badger/ subdirectory.
	// Supports ~ expansion. Defaults to ~/.local/share/coach.
	DataDir string `json:"data_dir,omitempty" env:"COACH_DATA_DIR"`

	// CharmHost overrides the Charm server for the charm backend.
	CharmHost string `json:"charm_host,omitempty" env:"CHARM_HOST"`

	// Snapshot is the interchange file used by status/import/export and
	// as the read fallback. Defaults to <DataDir>/snapshot.json.
	Snapshot string `json:"snapshot,omitempty" env:"COACH_SNAPSHOT"`

	// User is the default user ID for CLI commands.
	User string `json:"user,omitempty" env:"COACH_USER"`

	LogLevel string `json:"log_level,omitempty" env:"COACH_LOG_LEVEL"`

	LLMURL     string        `json:"llm_url,omitempty" env:"COACH_LLM_URL"`
	LLMModel   string        `json:"llm_model,omitempty" env:"COACH_LLM_MODEL"`
	LLMTimeout time.Duration `json:"llm_timeout,omitempty" env:"COACH_LLM_TIMEOUT"`

	// APIKey is read from the environment only; it is never saved.
	APIKey string `json:"-" env:"OPENAI_API_KEY"`

	HTTPAddr    string   `json:"http_addr,omitempty" env:"COACH_HTTP_ADDR"`
	CORSOrigins []string `json:"cors_origins,omitempty" env:"COACH_CORS_ORIGINS" envSeparator:","`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetSnapshotPath returns the interchange snapshot path.
func (c *Config) GetSnapshotPath() string {
	if c.Snapshot == "" {
		return filepath.Join(c.GetDataDir(), "snapshot.json")
	}
	return ExpandPath(c.Snapshot)
}

// GetUser returns the default user, falling back to the OS user name.
func (c *Config) GetUser() string {
	if u := strings.TrimSpace(c.User); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "me"
}

// GetLLMTimeout returns the generator timeout.
func (c *Config) GetLLMTimeout() time.Duration {
	if c.LLMTimeout <= 0 {
		return coach.DefaultTimeout
	}
	return c.LLMTimeout
}

// GetHTTPAddr returns the webhook listen address.
func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTPAddr
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	dataDir := c.GetDataDir()

	switch c.GetBackend() {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, storage.DefaultDBName))
	case BackendCharm:
		return storage.OpenCharm(c.CharmHost)
	case BackendBadger:
		return storage.OpenBadger(filepath.Join(dataDir, "badger"))
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// SnapshotReader returns the read-only fallback over the snapshot file.
func (c *Config) SnapshotReader() *interchange.SnapshotReader {
	return interchange.NewSnapshotReader(c.GetSnapshotPath())
}

// Generator returns the reply generator, or nil when no API key is set.
func (c *Config) Generator() coach.Generator {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil
	}
	g := coach.NewChatGenerator(c.LLMURL, c.LLMModel, c.APIKey)
	g.Client.Timeout = c.GetLLMTimeout()
	return g
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "coach", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
