// internal/config/config.go
//
// This package handles configuration and the engadmin home directory.
// Every installation gets a home folder (~/.engadmin by default) holding
// config.yaml, the activity and debug logs, and the persisted admin token.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// HomeDirName is the folder created under the user's home directory.
	HomeDirName = ".engadmin"
	// HomeEnv overrides the home directory location.
	HomeEnv = "ENGADMIN_HOME"

	// DefaultBaseURL is the production backend origin.
	DefaultBaseURL = "https://engineer-xkt8.onrender.com"
	// DefaultStatusFilter shows every engineer on the listing screen.
	DefaultStatusFilter = "all"
	// DefaultMockHost is the loopback interface used by the mock backend.
	DefaultMockHost = "127.0.0.1"
	// DefaultMockPort is the TCP port of the standalone mock backend.
	DefaultMockPort = 8000
	// DefaultMockOTP is the one-time code the mock backend accepts.
	DefaultMockOTP = "123456"
)

// StatusFilters lists the accepted listing.default_status values in the order
// the listing screen cycles through them.
var StatusFilters = []string{"all", "pending", "approved", "rejected", "verified"}

const defaultConfigYAML = `# engadmin configuration
version: 1

api:
  # Backend origin. Override with ENGADMIN_API_URL or --api.
  base_url: https://engineer-xkt8.onrender.com
  # Per-request timeout (e.g. 30s). Empty or 0 leaves it to the transport.
  timeout: ""

listing:
  # Status filter applied when the engineers screen opens.
  default_status: all

# Local mock backend (engadmin --mock or the mockbackend command).
mock:
  host: 127.0.0.1
  port: 8000
  otp: "123456"
`

// APIConfig describes how to reach the backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout,omitempty"`
}

// ListingConfig captures listing screen preferences.
type ListingConfig struct {
	DefaultStatus string `yaml:"default_status"`
}

// MockConfig configures the bundled mock backend.
type MockConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	OTP    string `yaml:"otp"`
	Secret string `yaml:"secret,omitempty"`
}

// FileConfig models config.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Listing ListingConfig `yaml:"listing"`
	Mock    MockConfig    `yaml:"mock"`
}

// Config holds the runtime configuration for engadmin.
type Config struct {
	// HomeDir is where config.yaml, logs/ and state/ live.
	HomeDir string

	File FileConfig
}

// ResolveHome picks the home directory: explicit override, then
// $ENGADMIN_HOME, then ~/.engadmin.
func ResolveHome(override string) (string, error) {
	if dir := strings.TrimSpace(override); dir != "" {
		return filepath.Abs(dir)
	}
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, HomeDirName), nil
}

// InitHome creates the home directory structure.
//
// Structure created:
// <home>/
// ├── config.yaml
// ├── logs/      <- activity.log (journal) and engadmin.log (debug)
// └── state/     <- admin_token
func InitHome(homeDir string) error {
	dirs := []string{
		filepath.Join(homeDir, "logs"),
		filepath.Join(homeDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureConfigFile(filepath.Join(homeDir, "config.yaml"))
}

// Load reads config.yaml from homeDir and applies .env and environment
// overrides on top of it.
func Load(homeDir string) (*Config, error) {
	loadDotEnv(".env")
	loadDotEnv(filepath.Join(homeDir, ".env"))

	cfg := &Config{HomeDir: homeDir, File: defaultFileConfig()}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.File.applyEnvOverrides()
	cfg.File.normalize()
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns an in-memory configuration rooted at homeDir without
// touching the filesystem.
func Default(homeDir string) *Config {
	return &Config{HomeDir: homeDir, File: defaultFileConfig()}
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.HomeDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.HomeDir, "state")
}

// ConfigPath returns the on-disk location for config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.HomeDir, "config.yaml")
}

// ActivityLogPath returns the journal rendered on the dashboard.
func (c *Config) ActivityLogPath() string {
	return filepath.Join(c.LogsDir(), "activity.log")
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.File.API.BaseURL, "/")
}

// SetBaseURL overrides the backend origin for this run only.
func (c *Config) SetBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if err := validateBaseURL(raw); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.File.API.BaseURL = strings.TrimRight(raw, "/")
	return nil
}

// APITimeout returns the configured per-request timeout; zero means none.
func (c *Config) APITimeout() time.Duration {
	d, _ := parseTimeout(c.File.API.Timeout)
	return d
}

// DefaultStatus returns the listing filter the engineers screen starts with.
func (c *Config) DefaultStatus() string {
	return c.File.Listing.DefaultStatus
}

// SetDefaultStatus updates the listing filter and persists it back to
// config.yaml so the next launch opens with the same filter.
func (c *Config) SetDefaultStatus(status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !contains(StatusFilters, status) {
		return fmt.Errorf("config: unknown status filter %q", status)
	}
	c.File.Listing.DefaultStatus = status

	// Only the listing preference is written back; run-only overrides such
	// as --api and environment values stay out of the file.
	onDisk, err := c.readFile()
	if err != nil {
		return err
	}
	onDisk.Listing.DefaultStatus = status
	return c.save(onDisk)
}

func (c *Config) loadFile() error {
	parsed, err := c.readFile()
	if err != nil {
		return err
	}
	c.File = parsed
	return nil
}

// readFile parses config.yaml over the defaults. A missing file yields the
// defaults.
func (c *Config) readFile() (FileConfig, error) {
	parsed := defaultFileConfig()
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return parsed, nil
		}
		return FileConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return FileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return parsed, nil
}

func (c *Config) save(fc FileConfig) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	fc.normalize()
	if err := fc.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.HomeDir, 0o700); err != nil {
		return fmt.Errorf("config: ensure home dir: %w", err)
	}
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o600); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		API:     APIConfig{BaseURL: DefaultBaseURL},
		Listing: ListingConfig{DefaultStatus: DefaultStatusFilter},
		Mock: MockConfig{
			Host: DefaultMockHost,
			Port: DefaultMockPort,
			OTP:  DefaultMockOTP,
		},
	}
}

func (fc *FileConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("ENGADMIN_API_URL")); value != "" {
		fc.API.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("ENGADMIN_API_TIMEOUT")); value != "" {
		fc.API.Timeout = value
	}
	if value := strings.TrimSpace(os.Getenv("ENGADMIN_MOCK_HOST")); value != "" {
		fc.Mock.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("ENGADMIN_MOCK_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil {
			fc.Mock.Port = port
		}
	}
	if value := strings.TrimSpace(os.Getenv("ENGADMIN_MOCK_OTP")); value != "" {
		fc.Mock.OTP = value
	}
}

func (fc *FileConfig) normalize() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	fc.API.BaseURL = strings.TrimRight(strings.TrimSpace(fc.API.BaseURL), "/")
	if fc.API.BaseURL == "" {
		fc.API.BaseURL = DefaultBaseURL
	}
	fc.API.Timeout = strings.TrimSpace(fc.API.Timeout)
	fc.Listing.DefaultStatus = strings.ToLower(strings.TrimSpace(fc.Listing.DefaultStatus))
	if fc.Listing.DefaultStatus == "" {
		fc.Listing.DefaultStatus = DefaultStatusFilter
	}
	fc.Mock.Host = strings.TrimSpace(fc.Mock.Host)
	if fc.Mock.Host == "" {
		fc.Mock.Host = DefaultMockHost
	}
	if fc.Mock.Port == 0 {
		fc.Mock.Port = DefaultMockPort
	}
	fc.Mock.OTP = strings.TrimSpace(fc.Mock.OTP)
	if fc.Mock.OTP == "" {
		fc.Mock.OTP = DefaultMockOTP
	}
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if err := validateBaseURL(fc.API.BaseURL); err != nil {
		return err
	}
	if _, err := parseTimeout(fc.API.Timeout); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if !contains(StatusFilters, fc.Listing.DefaultStatus) {
		return fmt.Errorf("listing.default_status must be one of %s", strings.Join(StatusFilters, ", "))
	}
	if fc.Mock.Port < 1 || fc.Mock.Port > 65535 {
		return fmt.Errorf("mock.port must be between 1 and 65535")
	}
	if len(fc.Mock.OTP) != 6 || strings.Trim(fc.Mock.OTP, "0123456789") != "" {
		return fmt.Errorf("mock.otp must be 6 digits")
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}

// loadDotEnv reads KEY=VALUE pairs without overriding variables that are
// already set in the process environment.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o600)
}
