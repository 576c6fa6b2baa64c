package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/cog/config.yml.
type GlobalConfig struct {
	GraphPath      string `yaml:"graph_path,omitempty"`
	OpenAlexAPIKey string `yaml:"openalex_api_key,omitempty"`
	Mailto         string `yaml:"mailto,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "cog"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that override the global config.
const (
	EnvAPIKey = "OPENALEX_API_KEY"
	EnvMailto = "OPENALEX_MAILTO"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/cog/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.GraphPath != "" {
		cfg.GraphPath = ExpandTilde(cfg.GraphPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetGraphPath returns the default repository path from global config.
func GetGraphPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.GraphPath
}

// GetAPIKey returns the OpenAlex API key. The environment wins over the file.
func GetAPIKey() string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.OpenAlexAPIKey
}

// ResolveMailto picks the polite-pool email: environment, then repository
// config, then global config.
func ResolveMailto(repo *Config) string {
	if m := os.Getenv(EnvMailto); m != "" {
		return m
	}
	if repo != nil && repo.Mailto != "" {
		return repo.Mailto
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.Mailto
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No cograph repository found.

Run 'cog init' in a directory, or create %s to set a default:
  mkdir -p %s
  echo 'graph_path: /path/to/your/graph' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
