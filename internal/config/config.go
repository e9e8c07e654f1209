package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	Gateway     GatewayConfig
	Withholding WithholdingConfig
	Compliance  ComplianceConfig
	Jobs        JobsConfig
	Secrets     SecretsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// GatewayConfig holds payment gateway connection settings.
// BaseURL points at the gateway's REST API; APIKey authenticates server-side calls.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
}

// WithholdingConfig holds tax withholding settings.
// BackupRate is the percentage applied to investors without a valid tax certification.
type WithholdingConfig struct {
	BackupRate float64
}

// ComplianceConfig holds retention policy settings.
// SanctionedCountries is the set of ISO 3166-1 alpha-2 codes whose residents
// have their dividends retained in full.
type ComplianceConfig struct {
	SanctionedCountries map[string]bool
}

// JobsConfig holds scheduled job settings.
type JobsConfig struct {
	// ReconcileSchedule is a cron expression for the payment reconciliation sweep.
	ReconcileSchedule string
	// ReconcileStaleMinutes is how old a non-terminal payment must be before the
	// sweep refreshes it against the gateway.
	ReconcileStaleMinutes int
}

// SecretsConfig holds encryption key material.
type SecretsConfig struct {
	// FernetKey encrypts ACH mandate ids at rest. Base64 url-safe, 32 bytes.
	FernetKey string
}

// defaultSanctionedCountries is used when SANCTIONED_COUNTRIES is not set.
const defaultSanctionedCountries = "CU,IR,KP,SY"

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	backupRate, err := strconv.ParseFloat(getEnv("WITHHOLDING_BACKUP_RATE", "24"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WITHHOLDING_BACKUP_RATE: %w", err)
	}

	staleMinutes, err := strconv.Atoi(getEnv("RECONCILE_STALE_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_STALE_MINUTES: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5002"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/distribution.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "https://api.gateway.example.com/v1"),
			APIKey:  getEnv("GATEWAY_API_KEY", ""),
		},
		Withholding: WithholdingConfig{
			BackupRate: backupRate,
		},
		Compliance: ComplianceConfig{
			SanctionedCountries: parseCountrySet(getEnv("SANCTIONED_COUNTRIES", defaultSanctionedCountries)),
		},
		Jobs: JobsConfig{
			ReconcileSchedule:     getEnv("RECONCILE_SCHEDULE", "*/15 * * * *"),
			ReconcileStaleMinutes: staleMinutes,
		},
		Secrets: SecretsConfig{
			FernetKey: getEnv("FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// parseCountrySet converts a comma-separated list of country codes into a lookup set.
// Codes are upper-cased and blank entries dropped.
func parseCountrySet(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, code := range strings.Split(raw, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			set[code] = true
		}
	}
	return set
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
