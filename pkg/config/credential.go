package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted for the API credential, in order.
const (
	EnvAPIKey         = "AI_MESSENGER_GEMINI_API_KEY"
	EnvAPIKeyFallback = "GEMINI_API_KEY"
)

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// LoadEnvFile merges variables from path into the process environment
// without overriding values that are already set. A missing file is not an
// error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	slog.Debug("env_file_loaded", "path", path)
	return nil
}

// Credential resolves the API key once: the primary env var, then the
// fallback env var, then the active provider's api_key. Empty when none is set.
func (c Config) Credential() string {
	return resolveCredential(os.Getenv, c.Active().APIKey)
}

func resolveCredential(getenv func(string) string, configured string) string {
	for _, name := range []string{EnvAPIKey, EnvAPIKeyFallback} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(configured)
}
