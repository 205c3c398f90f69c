package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	appDirName = "ResumeTailor"

	// BackendURLEnv overrides the configured backend base URL
	BackendURLEnv = "BACKEND_URL"
	// DataDirEnv overrides the directory holding the database and log file
	DataDirEnv = "RESUME_TAILOR_DATA_DIR"
)

// Config holds application configuration
type Config struct {
	BackendURL   string `json:"backend_url"`
	DataDir      string `json:"data_dir"`
	DownloadsDir string `json:"downloads_dir"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	if dir, err := configDir(); err == nil {
		cfg.DataDir = dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.DownloadsDir = filepath.Join(home, "Downloads")
	}
	return cfg
}

// configDir returns the per-user application directory
// On Windows: %APPDATA%/ResumeTailor
// On Unix: ~/.config/ResumeTailor
func configDir() (string, error) {
	if os.Getenv("APPDATA") != "" {
		return filepath.Join(os.Getenv("APPDATA"), appDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appDirName), nil
}

// GetConfigPath returns the path to the configuration file, creating its directory
func GetConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "config.json"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFiles (".env" when none are given) if present and lets
// environment variables override file values
func (c *Config) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if v, ok := os.LookupEnv(BackendURLEnv); ok {
		c.BackendURL = v
	}
	if v := os.Getenv(DataDirEnv); v != "" {
		c.DataDir = v
	}
	return nil
}

// NormalizedBackendURL returns the backend base URL without a trailing slash.
// An empty string means no backend is configured.
func (c *Config) NormalizedBackendURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
}

// DatabasePath returns the location of the embedded settings database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "resume-tailor.db")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if base := c.NormalizedBackendURL(); base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("backend_url is invalid: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("backend_url must use http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("backend_url has no host")
		}
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.DownloadsDir != "" {
		info, err := os.Stat(c.DownloadsDir)
		if err != nil {
			return fmt.Errorf("downloads directory not found: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("downloads_dir %s is not a directory", c.DownloadsDir)
		}
	}

	return nil
}
