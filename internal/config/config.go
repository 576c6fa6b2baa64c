// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matsen/cograph/internal/record"
)

// Config represents repository configuration stored in .cograph/config.json.
type Config struct {
	Mailto         string `json:"mailto,omitempty"`   // Polite-pool contact email sent to OpenAlex
	BaseURL        string `json:"base_url,omitempty"` // Override for the OpenAlex API base URL
	TimeoutSeconds int    `json:"timeout_seconds"`    // Per-request HTTP timeout
	PerPage        int    `json:"per_page"`           // Page size for filter queries
	Concurrency    int    `json:"concurrency"`        // Parallel work lookups
	DefaultKind    string `json:"default_kind"`       // authorship or citation
}

const (
	RepoDir     = ".cograph"
	ConfigFile  = "config.json"
	RecordsFile = "records.jsonl"
	CacheDir    = "cache"
	DBFile      = "graph.db"
)

// Defaults for a freshly initialized repository.
const (
	DefaultTimeoutSeconds = 5
	DefaultPerPage        = 25
	DefaultConcurrency    = 4
	MaxPerPage            = 200
)

// ErrNotRepository is returned when no .cograph directory is found.
var ErrNotRepository = errors.New("not in a cograph repository (no .cograph directory found)")

// Default returns the configuration written by `cog init`.
func Default() *Config {
	return &Config{
		TimeoutSeconds: DefaultTimeoutSeconds,
		PerPage:        DefaultPerPage,
		Concurrency:    DefaultConcurrency,
		DefaultKind:    string(record.KindAuthorship),
	}
}

// RepoPath returns the path to the .cograph directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// RecordsPath returns the path to records.jsonl from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, RepoDir, RecordsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir)
}

// DBPath returns the path to graph.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a cograph repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a cograph repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
// Zero-valued numeric fields fall back to defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.PerPage == 0 {
		c.PerPage = DefaultPerPage
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.DefaultKind == "" {
		c.DefaultKind = string(record.KindAuthorship)
	}
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := ValidatePositive("timeout_seconds", c.TimeoutSeconds); err != nil {
		return err
	}
	if err := ValidatePerPage(c.PerPage); err != nil {
		return err
	}
	if err := ValidatePositive("concurrency", c.Concurrency); err != nil {
		return err
	}
	if _, err := record.ParseKind(c.DefaultKind); err != nil {
		return fmt.Errorf("default_kind: %w", err)
	}
	return ValidateMailto(c.Mailto)
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ValidatePositive checks that an integer setting is at least 1.
func ValidatePositive(key string, v int) error {
	if v < 1 {
		return fmt.Errorf("invalid %s: %d (must be at least 1)", key, v)
	}
	return nil
}

// ValidatePerPage checks the OpenAlex page size bounds.
func ValidatePerPage(v int) error {
	if v < 1 || v > MaxPerPage {
		return fmt.Errorf("invalid per_page: %d (must be between 1 and %d)", v, MaxPerPage)
	}
	return nil
}

// ValidateMailto checks that a non-empty mailto looks like an email address.
func ValidateMailto(s string) error {
	if s == "" {
		return nil
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 || strings.ContainsAny(s, " \t") {
		return fmt.Errorf("invalid mailto: %q", s)
	}
	return nil
}
