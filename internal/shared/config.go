package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values loaded from config.toml.
const (
	EnvAPIURL  = "WP_API_URL"
	EnvSiteURL = "WP_SITE_URL"
	EnvDBPath  = "WPX_DB_PATH"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Site     SiteConfig     `toml:"site"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Uploads  UploadsConfig  `toml:"uploads"`
	Editor   EditorConfig   `toml:"editor"`
}

// SiteConfig locates the WordPress backend.
type SiteConfig struct {
	URL     string `toml:"url"`
	APIURL  string `toml:"api_url"`
	JWTPath string `toml:"jwt_path"`
	Timeout int    `toml:"timeout"` // seconds
}

// RequestTimeout returns the HTTP client timeout. Zero means none.
func (s SiteConfig) RequestTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 0
	}
	return time.Duration(s.Timeout) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings for the local preview server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UploadsConfig tunes the batch media upload pool.
type UploadsConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"` // uploads per second
}

// EditorConfig holds post editor defaults.
type EditorConfig struct {
	DefaultStatus string `toml:"default_status"`
	PerPage       int    `toml:"per_page"`
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.APIURL) == "" {
		return fmt.Errorf("%w: site.api_url is required", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnv loads variables from the given .env files (".env" when none are given) into the process environment.
//
// Missing files are ignored and existing variables are never overwritten.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides config values with any set environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.Site.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(EnvSiteURL)); v != "" {
		c.Site.URL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		c.Database.Path = v
	}
}
