package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the remote checklist API.
type APIConfig struct {
	// BaseURL is the root URL of the checklist service
	// (e.g., https://api.example.com/v1).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// RetryAttempts bounds the retry loop for transient API failures
	// and for the pending-change sync path.
	RetryAttempts int `mapstructure:"retry_attempts" yaml:"retry_attempts"`
}

// SyncConfig holds settings for background synchronization.
type SyncConfig struct {
	// EnableOffline gates whether api-mode mutations that have not been
	// confirmed by the server are flagged for a later sync pass.
	EnableOffline bool `mapstructure:"enable_offline" yaml:"enable_offline"`

	// IntervalSec is how often (in seconds) the background poller
	// flushes pending changes.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// StorageConfig holds settings for the local durable store.
type StorageConfig struct {
	// DBPath is the SQLite database file path. Empty means the default
	// location under the config directory.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// EmailConfig holds the IMAP settings for the email import source.
type EmailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Email   EmailConfig   `mapstructure:"email" yaml:"email"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns the application configuration directory,
// ~/.config/checklist-sync.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "checklist-sync")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDBPath returns the default SQLite database location.
func DefaultDBPath() string {
	return filepath.Join(ConfigDir(), "checklists.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			RetryAttempts: 3,
		},
		Sync: SyncConfig{
			EnableOffline: false,
			IntervalSec:   120,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.retry_attempts", 3)
	v.SetDefault("sync.enable_offline", false)
	v.SetDefault("sync.interval_sec", 120)
	v.SetDefault("display.theme", "default")
	v.SetDefault("email.port", "993")
	v.SetDefault("email.tls", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.RetryAttempts <= 0 {
		cfg.API.RetryAttempts = 3
	}
	if cfg.Sync.IntervalSec <= 0 {
		cfg.Sync.IntervalSec = 120
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("sync", cfg.Sync)
	v.Set("storage", cfg.Storage)
	v.Set("email", cfg.Email)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
