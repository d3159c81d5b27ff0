package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".ai_messenger"

// Supported llm_provider values.
const (
	ProviderGemini = "gemini"
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Supported storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config represents the application configuration
type Config struct {
	LLMProvider string          `json:"llm_provider"`
	Providers   ProvidersConfig `json:"providers"`
	Storage     StorageConfig   `json:"storage"`
	LogLevel    string          `json:"log_level"`
	LogFile     string          `json:"log_file"`
	LogFormat   string          `json:"log_format"`
}

// ProvidersConfig groups the per-provider settings.
type ProvidersConfig struct {
	Gemini LLMConfig `json:"gemini"`
	Google LLMConfig `json:"google"`
	OpenAI LLMConfig `json:"openai"`
}

// LLMConfig holds one provider's API settings. APITimeoutSeconds of 0
// leaves the request bounded only by the transport.
type LLMConfig struct {
	APIKey            string  `json:"api_key"`
	APIURL            string  `json:"api_url"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	APITimeoutSeconds int     `json:"api_timeout_seconds"`
}

// StorageConfig selects where conversations are persisted.
type StorageConfig struct {
	Backend string `json:"backend"` // "file", "sqlite" or "memory"
	Path    string `json:"path"`    // directory (file) or database file (sqlite); empty = default
	Key     string `json:"key"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		LLMProvider: ProviderGemini,
		Providers: ProvidersConfig{
			Gemini: LLMConfig{
				APIURL: "https://generativelanguage.googleapis.com",
				Model:  "gemini-1.5-flash",
			},
			Google: LLMConfig{
				Model:       "gemini-1.5-flash",
				Temperature: 1.0,
			},
			OpenAI: LLMConfig{
				APIURL:      "https://api.openai.com/v1",
				Model:       "gpt-4o-mini",
				Temperature: 0.7,
			},
		},
		Storage: StorageConfig{
			Backend: StorageFile,
			Key:     "chats",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Active returns the settings of the selected provider.
func (c Config) Active() LLMConfig {
	switch c.LLMProvider {
	case ProviderGoogle:
		return c.Providers.Google
	case ProviderOpenAI:
		return c.Providers.OpenAI
	default:
		return c.Providers.Gemini
	}
}

// Load loads configuration from the specified path
// If the file doesn't exist, creates one with default values
func Load(configPath string) (Config, error) {
	// Ensure directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Decode over defaults so fields missing from older files keep their default.
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid. A missing API key is not an
// error: AI conversations report it in-band.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderGoogle, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	active := c.Active()
	if strings.TrimSpace(active.Model) == "" {
		return fmt.Errorf("%s model is required", c.LLMProvider)
	}
	if active.APIURL != "" {
		u, err := url.Parse(active.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s api_url: %q", c.LLMProvider, active.APIURL)
		}
	} else if c.LLMProvider != ProviderGoogle {
		return fmt.Errorf("%s api_url is required", c.LLMProvider)
	}
	if active.Temperature < 0 || active.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got: %f", active.Temperature)
	}
	if active.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative, got: %d", active.MaxTokens)
	}
	if active.APITimeoutSeconds < 0 {
		return fmt.Errorf("api_timeout_seconds must not be negative, got: %d", active.APITimeoutSeconds)
	}

	switch c.Storage.Backend {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage key is required")
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}

	return nil
}

// StoragePath returns the configured storage path or the backend default.
func (c Config) StoragePath() string {
	if p := strings.TrimSpace(c.Storage.Path); p != "" {
		return p
	}
	switch c.Storage.Backend {
	case StorageSQLite:
		return filepath.Join(appDir(), "messenger.db")
	case StorageMemory:
		return ""
	default:
		return filepath.Join(appDir(), "data")
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(appDir(), "config.json")
}

func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return appDirName
	}
	return filepath.Join(homeDir, appDirName)
}
