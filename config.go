package chatpod

import (
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultModelName = "gpt-4o-mini"
	premiumModelName = "gpt-4o"
)

// Config carries process-level settings sourced from the environment.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	DefaultModel  string
	PremiumModel  string

	// AllowedUsers gates which users ever reach the throttle. Empty means
	// everyone is allowed.
	AllowedUsers []string

	SQLitePath  string
	PostgresDSN string
}

// LoadConfig reads .env if present, then the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using environment variables only")
	}

	cfg := &Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		DefaultModel:  getEnv("CHATPOD_DEFAULT_MODEL", defaultModelName),
		PremiumModel:  getEnv("CHATPOD_PREMIUM_MODEL", premiumModelName),
		SQLitePath:    getEnv("CHATPOD_SQLITE_PATH", ""),
		PostgresDSN:   getEnv("CHATPOD_POSTGRES_DSN", ""),
	}
	if raw := getEnv("CHATPOD_ALLOWED_USERS", ""); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.AllowedUsers = append(cfg.AllowedUsers, u)
			}
		}
	}
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		DefaultModel: defaultModelName,
		PremiumModel: premiumModelName,
	}
}

// Allowed reports whether the user may use the relay at all.
func (c *Config) Allowed(userID string) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	return slices.Contains(c.AllowedUsers, userID)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
