package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultModel          = "gemini-1.5-pro"
	DefaultBaseURL        = "http://localhost:8000"
	DefaultRequestTimeout = 60 * time.Second
)

// Models is the list offered by the model picker.
var Models = []string{"gemini-1.5-pro", "gemini-1.5-flash", "gpt-4o", "claude-3.5-sonnet"}

type AppConfig struct {
	BaseURL        string
	WebURL         string
	Token          string
	Model          string
	Home           string
	DBPath         string
	LogPath        string
	ExportDir      string
	ConfigPath     string
	RequestTimeout time.Duration
	Debug          bool
}

// Flags carries the command-line values; empty means "not given".
type Flags struct {
	BaseURL    string
	Token      string
	Model      string
	Home       string
	DBPath     string
	ConfigPath string
	ExportDir  string
	Debug      bool
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	BaseURL            string `toml:"base_url"`
	WebURL             string `toml:"web_url"`
	Token              string `toml:"token"`
	Model              string `toml:"model"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
	ExportDir          string `toml:"export_dir"`
}

// Resolve builds the configuration. Each value comes from the first source
// that sets it: flags, then SCOUT_* environment variables, then the config
// file, then defaults.
func Resolve(flags Flags) (AppConfig, error) {
	cfg := AppConfig{Debug: flags.Debug}

	home, err := DetectHome(flags.Home)
	if err != nil {
		return cfg, err
	}
	cfg.Home = home

	cfg.ConfigPath, err = DetectConfigPath(flags.ConfigPath)
	if err != nil {
		return cfg, err
	}
	file, err := loadFile(cfg.ConfigPath)
	if err != nil {
		return cfg, err
	}

	cfg.BaseURL = strings.TrimRight(first(flags.BaseURL, os.Getenv("SCOUT_API_BASE_URL"), file.BaseURL, DefaultBaseURL), "/")
	cfg.WebURL = strings.TrimRight(first(os.Getenv("SCOUT_WEB_URL"), file.WebURL, cfg.BaseURL), "/")
	cfg.Token = first(flags.Token, os.Getenv("SCOUT_API_TOKEN"), file.Token)
	cfg.Model = first(flags.Model, os.Getenv("SCOUT_MODEL"), file.Model, DefaultModel)
	cfg.ExportDir = first(flags.ExportDir, file.ExportDir)
	cfg.RequestTimeout = DefaultRequestTimeout
	if file.RequestTimeoutSecs > 0 {
		cfg.RequestTimeout = time.Duration(file.RequestTimeoutSecs) * time.Second
	}

	cfg.DBPath = flags.DBPath
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.Home, "state.sqlite")
	}
	cfg.LogPath = filepath.Join(cfg.Home, "scout.log")

	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return cfg, fmt.Errorf("create db dir: %w", err)
	}
	return cfg, nil
}

// DetectHome returns the data directory: explicit, then SCOUT_HOME, then
// ~/.local/share/scout.
func DetectHome(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Clean(explicit), nil
	}
	if fromEnv := os.Getenv("SCOUT_HOME"); fromEnv != "" {
		return filepath.Clean(fromEnv), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "scout"), nil
}

func DetectConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Clean(explicit), nil
	}
	if fromEnv := os.Getenv("SCOUT_CONFIG"); fromEnv != "" {
		return filepath.Clean(fromEnv), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "scout", "config.toml"), nil
}

// loadFile reads config.toml. A missing file yields an empty config.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return fc, nil
}

func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base url %q must be an absolute http(s) URL", raw)
	}
	return nil
}

// IsKnownModel reports whether m is in Models.
func IsKnownModel(m string) bool {
	for _, known := range Models {
		if known == m {
			return true
		}
	}
	return false
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
