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

type Config struct {
	// HTTP Server
	Port string

	// Ledger backend
	DataBackend   string
	LedgerAPIURL  string
	LedgerTimeout time.Duration

	// Google Sheets (direct backend). The spreadsheet has no passcode
	// check of its own, so logins are compared against SheetsPasscode.
	GoogleSpreadsheetID string
	SheetsPasscode      string

	// Memory backend (development)
	MemoryPasscode string
	MemoryEditable bool

	// Sessions
	SessionTTL      time.Duration
	SessionLimit    int
	CleanupInterval time.Duration

	// Categories, comma separated. Empty means the built-in defaults.
	IncomeCategories  string
	ExpenseCategories string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:   getEnv("DATA_BACKEND", "gas"),
		LedgerAPIURL:  getEnv("LEDGER_API_URL", ""),
		LedgerTimeout: getEnvDuration("LEDGER_TIMEOUT", 30*time.Second),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetsPasscode:      getEnv("KAIKEI_PASSCODE", ""),

		MemoryPasscode: getEnv("MEMORY_PASSCODE", "0000"),
		MemoryEditable: getEnvBool("MEMORY_EDITABLE", true),

		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionLimit:    getEnvInt("SESSION_LIMIT", 100),
		CleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute),

		IncomeCategories:  getEnv("INCOME_CATEGORIES", ""),
		ExpenseCategories: getEnv("EXPENSE_CATEGORIES", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kaikei.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kaikei"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_audit"),
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

	// Validate data backend
	validBackends := []string{"gas", "sheets", "memory"}
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

	// Validate GAS endpoint if backend is gas
	if c.DataBackend == "gas" {
		if c.LedgerAPIURL == "" {
			errors = append(errors, "ledger API URL is required when using gas backend")
		} else if parsedURL, err := url.Parse(c.LedgerAPIURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid ledger API URL '%s': %v", c.LedgerAPIURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid ledger API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	// Validate Google Sheets configuration if backend is sheets
	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.SheetsPasscode == "" {
			errors = append(errors, "passcode (KAIKEI_PASSCODE) is required when using sheets backend")
		}
	}

	if c.LedgerTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid ledger timeout %v: must be at least 1 second", c.LedgerTimeout))
	} else if c.LedgerTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid ledger timeout %v: must be at most 5 minutes", c.LedgerTimeout))
	}

	// Validate session settings
	if c.SessionLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid session limit %d: must be at least 1", c.SessionLimit))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	// Validate SQLite path when a snapshot database is configured
	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
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

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// IncomeList returns the configured income category names, or nil when
// the defaults should apply.
func (c *Config) IncomeList() []string {
	return splitCSV(c.IncomeCategories)
}

// ExpenseList returns the configured expense category names, or nil
// when the defaults should apply.
func (c *Config) ExpenseList() []string {
	return splitCSV(c.ExpenseCategories)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
