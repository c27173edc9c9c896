package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "AIGOV_SCAN_CONFIG"

// apiKeyEnv maps providers to the environment variable used when no key
// is stored in the config file.
var apiKeyEnv = map[string]string{
	"gemini":    "GOOGLE_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

type NarratorConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	// RatePerSecond throttles generator calls; 0 disables throttling.
	RatePerSecond float64 `yaml:"rate_per_second"`
}

type ScanConfig struct {
	Concurrency int    `yaml:"concurrency"`
	Inventory   string `yaml:"inventory"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
	Narrator         NarratorConfig            `yaml:"narrator"`
	Scan             ScanConfig                `yaml:"scan"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SelectedProvider: "gemini",
		SelectedModel:    "gemini-1.5-flash",
		Providers:        make(map[string]ProviderConfig),
		Narrator: NarratorConfig{
			Enabled:       true,
			Timeout:       20 * time.Second,
			Concurrency:   4,
			RatePerSecond: 2,
		},
		Scan: ScanConfig{
			Concurrency: 4,
			Inventory:   "inventory.yaml",
		},
	}
}

func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return "", err
		}
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".aigov-scan")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom reads path, falling back to Default when it does not exist.
// Fields missing from the file keep their default values.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the scanner cannot run with.
func (c *Config) Validate() error {
	if c.SelectedProvider != "" {
		if _, ok := apiKeyEnv[c.SelectedProvider]; !ok {
			return fmt.Errorf("unknown provider %q", c.SelectedProvider)
		}
	}
	if c.Narrator.Timeout < 0 {
		return fmt.Errorf("narrator.timeout must not be negative")
	}
	if c.Narrator.Concurrency < 0 || c.Scan.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if c.Narrator.RatePerSecond < 0 {
		return fmt.Errorf("narrator.rate_per_second must not be negative")
	}
	return nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(cfg, path)
}

func SaveConfigTo(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions for security (api keys)
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

// GetAPIKey returns the stored key, or the provider's environment variable.
func (c *Config) GetAPIKey(provider string) string {
	if key := c.Providers[provider].APIKey; key != "" {
		return key
	}
	if env, ok := apiKeyEnv[provider]; ok {
		return os.Getenv(env)
	}
	return ""
}
