package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Backends accepted by DATA_BACKEND.
var validBackends = []string{"memory", "sqlite", "postgres", "sheets", "gcs"}

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend string
	DataFile    string

	// Database
	SQLiteDBPath string
	PostgresURL  string

	// Google Sheets / Cloud Storage
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GCSBucket                string
	GCSObject                string
	GCSEndpoint              string

	// Snapshot refresh
	ReloadCron   string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Nonprofit search
	NonprofitAPIKey    string
	NonprofitBaseURL   string
	NonprofitCacheTTL  time.Duration
	NonprofitRateLimit int
}

func Load() *Config {
	credsFile := getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	if credsFile == "" {
		credsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "3001"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		DataFile:    getEnv("DATA_FILE", "./data/ach_payments.json"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/achpay.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Payments"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: credsFile,
		GCSBucket:                getEnv("GCS_BUCKET", ""),
		GCSObject:                getEnv("GCS_OBJECT", "ach_payments.json"),
		GCSEndpoint:              getEnv("GCS_ENDPOINT", ""),

		ReloadCron:   getEnv("RELOAD_CRON", ""),
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "achpay"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "records_reload"),

		NonprofitAPIKey:    getEnv("NONPROFIT_API_KEY", ""),
		NonprofitBaseURL:   getEnv("NONPROFIT_BASE_URL", "https://partners.every.org"),
		NonprofitCacheTTL:  getEnvDuration("NONPROFIT_CACHE_TTL", 5*time.Minute),
		NonprofitRateLimit: getEnvInt("NONPROFIT_RATE_LIMIT", 60),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	// Validate data backend
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "memory":
		if c.DataFile == "" {
			errors = append(errors, "data file cannot be empty when using memory backend")
		} else if _, err := os.Stat(c.DataFile); err != nil {
			errors = append(errors, fmt.Sprintf("data file is not readable: %v", err))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "postgres":
		if c.PostgresURL == "" {
			errors = append(errors, "POSTGRES_URL is required when using postgres backend")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	case "gcs":
		if c.GCSBucket == "" {
			errors = append(errors, "GCS bucket is required when using gcs backend")
		}
		if c.GCSObject == "" {
			errors = append(errors, "GCS object cannot be empty when using gcs backend")
		}
	}

	if c.GoogleServiceAccountFile != "" && (c.DataBackend == "sheets" || c.DataBackend == "gcs") {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	// Validate reload schedule if provided
	if c.ReloadCron != "" {
		if _, err := cron.ParseStandard(c.ReloadCron); err != nil {
			errors = append(errors, fmt.Sprintf("invalid reload cron '%s': %v", c.ReloadCron, err))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Nonprofit search; the API key itself is optional and disables the proxy when empty
	if parsedURL, err := url.Parse(c.NonprofitBaseURL); err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid nonprofit base URL '%s'", c.NonprofitBaseURL))
	}
	if c.NonprofitCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid nonprofit cache TTL %v: must not be negative", c.NonprofitCacheTTL))
	}
	if c.NonprofitRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid nonprofit rate limit %d: must be at least 1", c.NonprofitRateLimit))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
