// Package config handles loading and persisting user configuration
// for penman. Configuration is stored in ~/.penman/config.yaml and can be
// overridden by a .env file in the working directory and by the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".penman"
	fileName = "config.yaml"
	dotEnv   = ".env"

	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	defaultProvider    = ProviderOpenAI
	defaultModel       = "gpt-4o-mini"
	defaultOllamaModel = "llama3.2:latest"
	defaultTemperature = 0.7
	defaultTimeout     = 120 * time.Second

	envKeyAPIKey   = "OPENAI_API_KEY"
	envKeyModel    = "PENMAN_MODEL"
	envKeyProvider = "PENMAN_PROVIDER"
	envKeyBaseURL  = "PENMAN_BASE_URL"
)

// ErrMissingAPIKey is returned by Validate when the selected provider needs a
// credential and none was configured.
var ErrMissingAPIKey = errors.New("OpenAI API key is not set (run: penman config set-key <key>, or export " + envKeyAPIKey + ")")

// Models lists the chat models offered by default for the OpenAI provider.
var Models = []string{"gpt-4o-mini", "gpt-4-turbo"}

// Config holds the settings for one penman invocation. It is built once and
// passed to whatever issues completion requests.
type Config struct {
	APIKey      string        `yaml:"api_key,omitempty"`
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Temperature float64       `yaml:"temperature"`
	Stream      bool          `yaml:"stream"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns a config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Provider:    defaultProvider,
		Model:       defaultModel,
		Temperature: defaultTemperature,
		Stream:      true,
		Timeout:     defaultTimeout,
	}
}

// Dir returns the configuration directory path.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

// Path returns the configuration file path.
func Path() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the configuration from disk, .env and environment variables.
// A missing file is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg, err := readFile()
	if err != nil {
		return nil, err
	}

	env, err := godotenv.Read(dotEnv)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to parse %s: %w", dotEnv, err)
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return env[key]
	}

	if key := lookup(envKeyAPIKey); key != "" {
		cfg.APIKey = key
	}
	if provider := lookup(envKeyProvider); provider != "" {
		cfg.Provider = provider
	}
	if model := lookup(envKeyModel); model != "" {
		cfg.Model = model
	}
	if baseURL := lookup(envKeyBaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return cfg, nil
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOllama {
		return defaultOllamaModel
	}
	return defaultModel
}

// Validate checks that the config is usable before any request is made.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q (supported: %s, %s)", c.Provider, ProviderOpenAI, ProviderOllama)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %.2f", c.Temperature)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// MaskedKey returns the API key with everything but its ends hidden.
func (c *Config) MaskedKey() string {
	if c.APIKey == "" {
		return "(not set)"
	}
	if len(c.APIKey) <= 8 {
		return "****"
	}
	return c.APIKey[:4] + "..." + c.APIKey[len(c.APIKey)-4:]
}

func readFile() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", Path(), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", Path(), err)
	}
	return cfg, nil
}

// save persists the config to disk.
func save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(Path(), data, 0o600)
}

func update(fn func(*Config)) error {
	cfg, err := readFile()
	if err != nil {
		return err
	}
	fn(cfg)
	return save(cfg)
}

// SetAPIKey saves the API key to the config file.
func SetAPIKey(key string) error {
	return update(func(c *Config) { c.APIKey = key })
}

// SetModel saves the model preference to the config file.
func SetModel(model string) error {
	return update(func(c *Config) { c.Model = model })
}

// SetProvider saves the provider to the config file.
func SetProvider(provider string) error {
	if provider != ProviderOpenAI && provider != ProviderOllama {
		return fmt.Errorf("unknown provider %q (supported: %s, %s)", provider, ProviderOpenAI, ProviderOllama)
	}
	return update(func(c *Config) {
		c.Provider = provider
		c.Model = DefaultModel(provider)
	})
}
