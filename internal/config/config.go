package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Transports the bot can receive updates over.
const (
	TransportPolling = "polling"
	TransportWebhook = "webhook"
)

type Config struct {
	// Telegram
	TelegramToken string
	BotTransport  string
	WebhookURL    string

	// SOCKS5 proxy for the Telegram API
	ProxyServer   string
	ProxyUser     string
	ProxyPassword string

	// HTTP Server (webhook + health)
	Port               string
	RateLimitPerMinute int

	// Backend selection
	DataBackend  string
	SQLiteDBPath string
	RedisURL     string
	CSVDataDir   string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger catalog
	Modes    []string
	Accounts []string
	Timezone string

	// Dispatcher
	DispatchWorkers int

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Mirror worker
	MirrorDedupeSize int
	MirrorDedupeTTL  time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		BotTransport:  strings.ToLower(getEnv("BOT_TRANSPORT", TransportPolling)),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),

		ProxyServer:   getEnv("PROXY_SOCKS5_SERVER", ""),
		ProxyUser:     getEnv("PROXY_SOCKS5_USER", ""),
		ProxyPassword: getEnv("PROXY_SOCKS5_PASS", ""),

		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", "memory")),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CSVDataDir:   getEnv("CSV_DATA_DIR", "./data/csv"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_transactions"),

		Modes:    getEnvList("LEDGER_MODES", nil),
		Accounts: getEnvList("LEDGER_ACCOUNTS", nil),
		Timezone: getEnv("TIMEZONE", "Local"),

		DispatchWorkers: getEnvInt("DISPATCH_WORKERS", 4),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		MirrorDedupeSize: getEnvInt("MIRROR_DEDUPE_SIZE", 1000),
		MirrorDedupeTTL:  getEnvDuration("MIRROR_DEDUPE_TTL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Location resolves Timezone. Validate reports a bad value.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate checks the settings the bot process needs and returns every
// problem found in a single error.
func (c *Config) Validate() error {
	var errors []string

	if c.TelegramToken == "" {
		errors = append(errors, "TELEGRAM_TOKEN is required")
	}

	switch c.BotTransport {
	case TransportPolling:
	case TransportWebhook:
		if c.WebhookURL == "" {
			errors = append(errors, "WEBHOOK_URL is required when using webhook transport")
		} else if u, err := url.Parse(c.WebhookURL); err != nil || u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid webhook URL '%s': must be an https URL", c.WebhookURL))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid bot transport '%s': must be one of [%s %s]", c.BotTransport, TransportPolling, TransportWebhook))
	}

	errors = append(errors, c.validateCommon()...)

	if c.DispatchWorkers < 1 {
		errors = append(errors, fmt.Sprintf("invalid dispatch workers %d: must be at least 1", c.DispatchWorkers))
	} else if c.DispatchWorkers > 256 {
		errors = append(errors, fmt.Sprintf("invalid dispatch workers %d: must be at most 256", c.DispatchWorkers))
	}

	if c.ProxyServer != "" && c.ProxyPassword != "" && c.ProxyUser == "" {
		errors = append(errors, "PROXY_SOCKS5_USER is required when PROXY_SOCKS5_PASS is set")
	}

	return joinErrors(errors)
}

// ValidateWorker checks the settings of the sheet mirror worker.
func (c *Config) ValidateWorker() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the mirror worker")
	}
	errors = append(errors, c.validateAMQP()...)

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the mirror worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the mirror worker")
	}
	hasFile := c.GoogleServiceAccountFile != ""
	if !hasFile && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.MirrorDedupeSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid mirror dedupe size %d: must be at least 1", c.MirrorDedupeSize))
	}
	if c.MirrorDedupeTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mirror dedupe TTL %v: must be at least 1 second", c.MirrorDedupeTTL))
	}

	return joinErrors(errors)
}

// ValidateStorage checks only the backend settings, for tools that open a
// ledger without running the bot.
func (c *Config) ValidateStorage() error {
	return joinErrors(c.validateBackend())
}

func (c *Config) validateCommon() []string {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	errors = append(errors, c.validateBackend()...)
	errors = append(errors, c.validateAMQP()...)

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	return errors
}

func (c *Config) validateBackend() []string {
	var errors []string

	validBackends := []string{"memory", "sqlite", "redis", "csv"}
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
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if msg := ensureDir(filepath.Dir(c.SQLiteDBPath)); msg != "" {
			errors = append(errors, msg)
		}
	case "redis":
		if c.RedisURL == "" {
			errors = append(errors, "REDIS_URL cannot be empty when using redis backend")
		} else if u, err := url.Parse(c.RedisURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Redis URL '%s': %v", c.RedisURL, err))
		} else if u.Scheme != "redis" && u.Scheme != "rediss" {
			errors = append(errors, fmt.Sprintf("invalid Redis URL scheme '%s': must be 'redis' or 'rediss'", u.Scheme))
		}
	case "csv":
		if c.CSVDataDir == "" {
			errors = append(errors, "CSV data directory cannot be empty when using csv backend")
		} else if msg := ensureDir(c.CSVDataDir); msg != "" {
			errors = append(errors, msg)
		}
	}

	return errors
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var errors []string
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
	return errors
}

func ensureDir(dir string) string {
	if dir == "." || dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Sprintf("cannot create directory '%s': %v", dir, err)
		}
	}
	return ""
}

func joinErrors(errors []string) error {
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

// getEnvList splits a comma-separated value, dropping blank items.
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
