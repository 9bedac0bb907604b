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

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// AIConfig provides settings for the generative scoring provider.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsAIScoringEnabled() bool
}

// ProviderConfig provides settings for external enrichment sources.
type ProviderConfig interface {
	GetEnrichmentAPIURL() string
	GetEnrichmentAPIKey() string
	GetWhatsAppAPIURL() string
	GetWhatsAppAPIKey() string
	GetWhatsAppBusinessID() string
	GetProviderTimeout() time.Duration
}

// PipelineConfig provides settings for the enrichment pipeline.
type PipelineConfig interface {
	GetBatchConcurrency() int
}

// SchedulerConfig provides settings for background task scheduling.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUser() string
	GetSMTPPass() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetReportRecipient() string
	IsEmailEnabled() bool
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	CORSAllowAll bool
	CORSOrigins  []string

	GeminiAPIKey string
	GeminiModel  string

	EnrichmentAPIURL   string
	EnrichmentAPIKey   string
	WhatsAppAPIURL     string
	WhatsAppAPIKey     string
	WhatsAppBusinessID string
	ProviderTimeout    time.Duration

	BatchConcurrency int

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	EmailFromName    string
	EmailFromAddress string
	ReportRecipient  string
}

// Load reads configuration from the environment, with optional .env support.
func Load() (*Config, error) {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CORSAllowAll: getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		EnrichmentAPIURL:   os.Getenv("ENRICHMENT_API_URL"),
		EnrichmentAPIKey:   os.Getenv("ENRICHMENT_API_KEY"),
		WhatsAppAPIURL:     getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v18.0"),
		WhatsAppAPIKey:     os.Getenv("WHATSAPP_API_KEY"),
		WhatsAppBusinessID: os.Getenv("WHATSAPP_BUSINESS_ID"),
		ProviderTimeout:    getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),

		BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 3),

		RedisURL:         os.Getenv("REDIS_URL"),
		RedisTLSInsecure: getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),

		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Leadflow"),
		EmailFromAddress: os.Getenv("EMAIL_FROM_ADDRESS"),
		ReportRecipient:  os.Getenv("REPORT_RECIPIENT"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ProviderTimeout > 30*time.Second {
		// External calls must stay bounded; cap misconfigured timeouts.
		cfg.ProviderTimeout = 30 * time.Second
	}

	return cfg, nil
}

// GetDatabaseURL implements DatabaseConfig.
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// GetHTTPAddr implements HTTPConfig.
func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }

// GetCORSAllowAll implements HTTPConfig.
func (c *Config) GetCORSAllowAll() bool { return c.CORSAllowAll }

// GetCORSOrigins implements HTTPConfig.
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// GetGeminiAPIKey implements AIConfig.
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }

// GetGeminiModel implements AIConfig.
func (c *Config) GetGeminiModel() string { return c.GeminiModel }

// IsAIScoringEnabled implements AIConfig.
func (c *Config) IsAIScoringEnabled() bool { return c.GeminiAPIKey != "" }

// GetEnrichmentAPIURL implements ProviderConfig.
func (c *Config) GetEnrichmentAPIURL() string { return c.EnrichmentAPIURL }

// GetEnrichmentAPIKey implements ProviderConfig.
func (c *Config) GetEnrichmentAPIKey() string { return c.EnrichmentAPIKey }

// GetWhatsAppAPIURL implements ProviderConfig.
func (c *Config) GetWhatsAppAPIURL() string { return c.WhatsAppAPIURL }

// GetWhatsAppAPIKey implements ProviderConfig.
func (c *Config) GetWhatsAppAPIKey() string { return c.WhatsAppAPIKey }

// GetWhatsAppBusinessID implements ProviderConfig.
func (c *Config) GetWhatsAppBusinessID() string { return c.WhatsAppBusinessID }

// GetProviderTimeout implements ProviderConfig.
func (c *Config) GetProviderTimeout() time.Duration { return c.ProviderTimeout }

// GetBatchConcurrency implements PipelineConfig.
func (c *Config) GetBatchConcurrency() int { return c.BatchConcurrency }

// GetRedisURL implements SchedulerConfig.
func (c *Config) GetRedisURL() string { return c.RedisURL }

// GetRedisTLSInsecure implements SchedulerConfig.
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// GetAsynqQueueName implements SchedulerConfig.
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }

// GetAsynqConcurrency implements SchedulerConfig.
func (c *Config) GetAsynqConcurrency() int { return c.AsynqConcurrency }

// GetSMTPHost implements EmailConfig.
func (c *Config) GetSMTPHost() string { return c.SMTPHost }

// GetSMTPPort implements EmailConfig.
func (c *Config) GetSMTPPort() int { return c.SMTPPort }

// GetSMTPUser implements EmailConfig.
func (c *Config) GetSMTPUser() string { return c.SMTPUser }

// GetSMTPPass implements EmailConfig.
func (c *Config) GetSMTPPass() string { return c.SMTPPass }

// GetEmailFromName implements EmailConfig.
func (c *Config) GetEmailFromName() string { return c.EmailFromName }

// GetEmailFromAddress implements EmailConfig.
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// GetReportRecipient implements EmailConfig.
func (c *Config) GetReportRecipient() string { return c.ReportRecipient }

// IsEmailEnabled implements EmailConfig.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
