// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the session itself goes to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scaledesk/cli/internal/xdg"
)

// Environment variables that override the config file.
const (
	EnvBaseURL         = "SCALEDESK_BASE_URL"
	EnvKeyringBackend  = "SCALEDESK_KEYRING_BACKEND"
	EnvKeyringPassword = "SCALEDESK_KEYRING_PASSWORD"
	EnvVerbose         = "SCALEDESK_VERBOSE"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	BaseURL     string   `json:"base_url"`
	LoginPaths  []string `json:"login_paths"`
	RefreshPath string   `json:"refresh_path"`
	// ProbePath is fetched for diagnostics when every login path fails.
	// Empty means the first login path.
	ProbePath string `json:"probe_path,omitempty"`
	// LogoutPath is the optional server-side refresh token blacklist.
	LogoutPath     string `json:"logout_path,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	LogLevel       string `json:"log_level"`
	KeyringBackend string `json:"keyring_backend"`
	// RefreshSingleFlight makes concurrent requests share one refresh call
	// instead of refreshing independently.
	RefreshSingleFlight bool `json:"refresh_single_flight"`
}

// Default returns the built-in settings used when no config file exists.
func Default() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		LoginPaths: []string{
			"/test1/api/token/",
			"/api/token/",
			"/test1/token/",
		},
		RefreshPath:    "/api/token/refresh/",
		TimeoutSeconds: 10,
		LogLevel:       "info",
		KeyringBackend: "auto",
	}
}

// Timeout returns the per-request HTTP timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EffectiveProbePath returns the diagnostic probe path: probe_path when set,
// else the first login path. Empty means no probe.
func (c Config) EffectiveProbePath() string {
	if c.ProbePath != "" {
		return c.ProbePath
	}
	if len(c.LoginPaths) > 0 {
		return c.LoginPaths[0]
	}
	return ""
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Environment
// overrides are applied on top in both cases.
func Load() (Config, error) {
	c, err := LoadFile()
	if err != nil {
		return c, err
	}
	c.applyEnv()
	return c, nil
}

// LoadFile is Load without the environment overrides, for read-modify-write.
func LoadFile() (Config, error) {
	c := Default()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	c.fillDefaults()
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// fillDefaults restores fields a partial config file left empty.
func (c *Config) fillDefaults() {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if len(c.LoginPaths) == 0 {
		c.LoginPaths = d.LoginPaths
	}
	if c.RefreshPath == "" {
		c.RefreshPath = d.RefreshPath
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.KeyringBackend == "" {
		c.KeyringBackend = d.KeyringBackend
	}
}

func (c *Config) applyEnv() {
	c.BaseURL = strings.TrimRight(GetEnv(EnvBaseURL, c.BaseURL), "/")
	c.KeyringBackend = GetEnv(EnvKeyringBackend, c.KeyringBackend)
}

// Verbose reports whether SCALEDESK_VERBOSE asks for debug output.
func Verbose() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvVerbose))
	return err == nil && v
}

// GetEnv returns the value of envVar or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
