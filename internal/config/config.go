// Package config loads the process-wide, read-only configuration.
//
// Load is called once from main; the resulting *Config is passed explicitly
// to whatever needs it. Nothing else in the module reads the environment.
//
// Sources, lowest precedence first:
//  1. built-in defaults
//  2. a YAML file (CONFIG_PATH, or ./config.yml when it exists)
//  3. environment variables, optionally seeded from a .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sakif/portfolio/internal/apperror"
)

const (
	DefaultPort                 = 8080
	DefaultConfigPath           = "config.yml"
	DefaultGitHubAPIURL         = "https://api.github.com"
	DefaultGitHubWebURL         = "https://github.com"
	DefaultPlaceholderAvatarURL = "https://avatars.githubusercontent.com/u/131169031?s=200&v=4"
	DefaultFetchTimeout         = 5 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port int `yaml:"port"`

	// GitHubUsername is the identity whose profile and repositories are shown.
	GitHubUsername string `yaml:"github_username"`
	GitHubAPIURL   string `yaml:"api_url"`
	GitHubWebURL   string `yaml:"web_url"`
	// GitHubToken is optional and only raises the API rate limit.
	GitHubToken string `yaml:"-"`

	PlaceholderAvatarURL string        `yaml:"placeholder_avatar_url"`
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`

	// CatalogPath replaces the embedded project/library catalog when set.
	CatalogPath string `yaml:"catalog_path"`

	LogLevel slog.Level `yaml:"-"`
}

// Default returns the built-in defaults. GitHubUsername is left empty and
// must be supplied.
func Default() Config {
	return Config{
		Port:                 DefaultPort,
		GitHubAPIURL:         DefaultGitHubAPIURL,
		GitHubWebURL:         DefaultGitHubWebURL,
		PlaceholderAvatarURL: DefaultPlaceholderAvatarURL,
		FetchTimeout:         DefaultFetchTimeout,
		LogLevel:             slog.LevelInfo,
	}
}

// Load loads configuration from a .env file, the YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	cfg := Default()

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile overlays the YAML file at path. A missing file is only an error
// when the path was given explicitly.
func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return apperror.ValidationFailed("PORT", fmt.Sprintf("invalid PORT value %q", portStr))
		}
		c.Port = port
	}

	overrideString(&c.GitHubUsername, "GITHUB_USERNAME")
	overrideString(&c.GitHubAPIURL, "GITHUB_API_URL")
	overrideString(&c.GitHubWebURL, "GITHUB_WEB_URL")
	overrideString(&c.GitHubToken, "GITHUB_TOKEN")
	overrideString(&c.PlaceholderAvatarURL, "PLACEHOLDER_AVATAR_URL")
	overrideString(&c.CatalogPath, "CATALOG_PATH")

	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperror.ValidationFailed("FETCH_TIMEOUT", fmt.Sprintf("invalid FETCH_TIMEOUT %q: %v", v, err))
		}
		c.FetchTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return apperror.ValidationFailed("LOG_LEVEL", fmt.Sprintf("invalid LOG_LEVEL %q", v))
		}
	}
	return nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	c.GitHubUsername = strings.TrimSpace(c.GitHubUsername)
	if c.GitHubUsername == "" {
		return apperror.ValidationFailed("github_username", "github username is required (set GITHUB_USERNAME or github_username in config.yml)")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return apperror.ValidationFailed("port", fmt.Sprintf("port %d out of range", c.Port))
	}
	if c.FetchTimeout < 0 {
		return apperror.ValidationFailed("fetch_timeout", "fetch timeout must not be negative")
	}
	c.GitHubWebURL = strings.TrimRight(c.GitHubWebURL, "/")
	c.GitHubAPIURL = strings.TrimRight(c.GitHubAPIURL, "/")
	return nil
}

// ProfileURL returns the public GitHub page for login.
func (c *Config) ProfileURL(login string) string {
	return c.GitHubWebURL + "/" + login
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
