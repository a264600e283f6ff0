package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for ID tokens

	Algorithm      string // Optional: ID token signature algorithm (ML-DSA-44, ML-DSA-65, ML-DSA-87) (default: ML-DSA-44)
	SigningKeyFile string // Optional: path to the signing key file; empty means ephemeral keys
	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)

	SessionTTL     time.Duration // Optional: browser session lifetime (default: 12h)
	CodeTTL        time.Duration // Optional: authorization code lifetime (default: 5m)
	AccessTokenTTL time.Duration // Optional: access token lifetime (default: 1h)
	IDTokenTTL     time.Duration // Optional: ID token lifetime (default: 15m)

	// Bootstrap seeds, only consulted when the store is empty
	BootstrapUsername     string
	BootstrapPassword     string // empty means generate one and log it
	BootstrapEmail        string
	BootstrapName         string
	BootstrapClientName   string
	BootstrapRedirectURIs []string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         os.Getenv("AUTH_ISSUER"),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "ML-DSA-44"),
		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"), // Optional: empty keeps keys in memory only
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),

		SessionTTL:     getEnvDurationOrDefault("AUTH_SESSION_TTL", 12*time.Hour),
		CodeTTL:        getEnvDurationOrDefault("AUTH_CODE_TTL", 5*time.Minute),
		AccessTokenTTL: getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", time.Hour),
		IDTokenTTL:     getEnvDurationOrDefault("AUTH_ID_TOKEN_TTL", 15*time.Minute),

		BootstrapUsername:   getEnvOrDefault("BOOTSTRAP_USERNAME", "admin"),
		BootstrapPassword:   os.Getenv("BOOTSTRAP_PASSWORD"),
		BootstrapEmail:      os.Getenv("BOOTSTRAP_EMAIL"),
		BootstrapName:       getEnvOrDefault("BOOTSTRAP_NAME", "Administrator"),
		BootstrapClientName: getEnvOrDefault("BOOTSTRAP_CLIENT_NAME", "default-client"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if uris := os.Getenv("BOOTSTRAP_REDIRECT_URIS"); uris != "" {
		for _, uri := range strings.Split(uris, ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				cfg.BootstrapRedirectURIs = append(cfg.BootstrapRedirectURIs, uri)
			}
		}
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
