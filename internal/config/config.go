package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (audit event stream)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Revenue aggregator. When RevenueURL is empty a static figure of
	// RevenueStaticCents is used (local development only).
	RevenueURL         string
	RevenueStaticCents int64

	// Deduction worker
	DeductionCron   string // standard 5-field cron spec
	DeductionPeriod string // today | last-7-days | last-30-days | last-365-days
	SchedulerActor  string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/outlay.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "outlay"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "audit_events"),

		RevenueURL:         getEnv("REVENUE_URL", ""),
		RevenueStaticCents: getEnvInt64("REVENUE_STATIC_CENTS", 0),

		DeductionCron:   getEnv("DEDUCTION_CRON", "0 2 * * *"),
		DeductionPeriod: getEnv("DEDUCTION_PERIOD", "last-30-days"),
		SchedulerActor:  getEnv("SCHEDULER_ACTOR", "system-scheduler"),
	}
}

// Validate checks the configuration before any component starts.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RevenueURL != "" {
		if parsed, err := url.Parse(c.RevenueURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid revenue URL '%s'", c.RevenueURL))
		}
	}
	if c.RevenueStaticCents < 0 {
		problems = append(problems, "static revenue cannot be negative")
	}

	if _, err := cron.ParseStandard(c.DeductionCron); err != nil {
		problems = append(problems, fmt.Sprintf("invalid deduction cron spec '%s': %v", c.DeductionCron, err))
	}
	switch c.DeductionPeriod {
	case "today", "last-7-days", "last-30-days", "last-365-days":
	default:
		problems = append(problems, fmt.Sprintf("invalid deduction period '%s'", c.DeductionPeriod))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
