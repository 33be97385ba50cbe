// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetIngestInterval() time.Duration
}

// FeedConfig provides settings for the SAM.gov feed client.
type FeedConfig interface {
	GetSAMBaseURL() string
	GetSAMAPIKey() string
	GetSAMMaxRetries() int
}

// IngestionConfig provides defaults for ingestion runs.
type IngestionConfig interface {
	GetDefaultCategoryCodes() []string
	GetDefaultLookbackDays() int
	GetIngestPageSize() int
	GetIngestMaxPages() int
}

// EnrichmentConfig provides settings for the enrichment endpoints.
type EnrichmentConfig interface {
	GetAutomationKey() string
	GetEnrichmentTextCap() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	IngestInterval       time.Duration
	SAMBaseURL           string
	SAMAPIKey            string
	SAMMaxRetries        int
	DefaultCategoryCodes []string
	DefaultLookbackDays  int
	IngestPageSize       int
	IngestMaxPages       int
	AutomationKey        string
	EnrichmentTextCap    int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string        { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int         { return c.AsynqConcurrency }
func (c *Config) GetIngestInterval() time.Duration { return c.IngestInterval }

// FeedConfig implementation
func (c *Config) GetSAMBaseURL() string { return c.SAMBaseURL }
func (c *Config) GetSAMAPIKey() string  { return c.SAMAPIKey }
func (c *Config) GetSAMMaxRetries() int { return c.SAMMaxRetries }

// IngestionConfig implementation
func (c *Config) GetDefaultCategoryCodes() []string { return c.DefaultCategoryCodes }
func (c *Config) GetDefaultLookbackDays() int       { return c.DefaultLookbackDays }
func (c *Config) GetIngestPageSize() int            { return c.IngestPageSize }
func (c *Config) GetIngestMaxPages() int            { return c.IngestMaxPages }

// EnrichmentConfig implementation
func (c *Config) GetAutomationKey() string  { return c.AutomationKey }
func (c *Config) GetEnrichmentTextCap() int { return c.EnrichmentTextCap }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTAccessSecret:      os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:         getBoolEnv("CORS_ALLOW_ALL", false),
		CORSOrigins:          splitCSV(os.Getenv("CORS_ORIGINS")),
		CORSAllowCreds:       getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		RedisURL:             os.Getenv("REDIS_URL"),
		RedisTLSInsecure:     getBoolEnv("REDIS_TLS_INSECURE", false),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     getIntEnv("ASYNQ_CONCURRENCY", 10),
		IngestInterval:       getDurationEnv("INGEST_INTERVAL", 12*time.Hour),
		SAMBaseURL:           getEnv("SAM_BASE_URL", "https://api.sam.gov/opportunities/v2/search"),
		SAMAPIKey:            os.Getenv("SAM_API_KEY"),
		SAMMaxRetries:        getIntEnv("SAM_MAX_RETRIES", 5),
		DefaultCategoryCodes: splitCSV(getEnv("SAM_NAICS", "541611,541690")),
		DefaultLookbackDays:  getIntEnv("INGEST_LOOKBACK_DAYS", 7),
		IngestPageSize:       getIntEnv("INGEST_PAGE_SIZE", 100),
		IngestMaxPages:       getIntEnv("INGEST_MAX_PAGES", 20),
		AutomationKey:        os.Getenv("AUTOMATION_KEY"),
		EnrichmentTextCap:    getIntEnv("ENRICHMENT_TEXT_CAP", 8000),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
