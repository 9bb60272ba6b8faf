// Package config provides configuration management for the site analysis
// service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	// Server settings
	Port     int
	LogLevel string

	// URL validation
	AllowedDomains []string // domain glob patterns, e.g. "*.nl", "*.com"

	// Rate limiting
	RequestsPerHour int
	RequestsPerDay  int

	// Scraper settings
	ScrapeTimeout    time.Duration
	ScrapeMaxRetries int
	ScrapeRetryDelay time.Duration
	SettleDelay      time.Duration

	// Browser pool settings
	BrowserPoolSize    int
	BrowserIdleTimeout time.Duration
	BrowserMaxRequests int
	BrowserMaxAge      time.Duration
	ChromePath         string

	// LLM settings
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Cache settings
	CacheMaxEntries  int
	CacheMaxBytes    int64
	ContentCacheTTL  time.Duration
	AnalysisCacheTTL time.Duration
	ResultCacheTTL   time.Duration
	CacheSweep       time.Duration
}

// Load creates a Config from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8090),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedDomains: getEnvList("ALLOWED_DOMAINS", []string{"*.nl", "*.com", "*.net", "*.org", "*.eu", "*.be", "*.de"}),

		RequestsPerHour: getEnvInt("REQUESTS_PER_HOUR", 100),
		RequestsPerDay:  getEnvInt("REQUESTS_PER_DAY", 1000),

		ScrapeTimeout:    getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),
		ScrapeMaxRetries: getEnvInt("SCRAPE_MAX_RETRIES", 2),
		ScrapeRetryDelay: getEnvDuration("SCRAPE_RETRY_DELAY", 2*time.Second),
		SettleDelay:      getEnvDuration("SCRAPE_SETTLE_DELAY", 2*time.Second),

		BrowserPoolSize:    getEnvInt("BROWSER_POOL_SIZE", 3),
		BrowserIdleTimeout: getEnvDuration("BROWSER_IDLE_TIMEOUT", 5*time.Minute),
		BrowserMaxRequests: getEnvInt("BROWSER_MAX_REQUESTS", 100),
		BrowserMaxAge:      getEnvDuration("BROWSER_MAX_AGE", 30*time.Minute),
		ChromePath:         getEnv("CHROME_PATH", ""),

		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2000),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),

		CacheMaxEntries:  getEnvInt("CACHE_MAX_ENTRIES", 1000),
		CacheMaxBytes:    int64(getEnvInt("CACHE_MAX_BYTES", 100*1024*1024)),
		ContentCacheTTL:  getEnvDuration("CONTENT_CACHE_TTL", 2*time.Hour),
		AnalysisCacheTTL: getEnvDuration("ANALYSIS_CACHE_TTL", 6*time.Hour),
		ResultCacheTTL:   getEnvDuration("RESULT_CACHE_TTL", 24*time.Hour),
		CacheSweep:       getEnvDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
	}
}

// Validate checks for impossible option combinations. These are programmer
// errors and fail fast at startup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.BrowserPoolSize < 1 {
		return fmt.Errorf("browser pool size must be at least 1, got %d", c.BrowserPoolSize)
	}
	if c.ScrapeMaxRetries < 0 {
		return fmt.Errorf("scrape max retries must not be negative, got %d", c.ScrapeMaxRetries)
	}
	if c.CacheMaxEntries < 1 {
		return fmt.Errorf("cache max entries must be at least 1, got %d", c.CacheMaxEntries)
	}
	if c.CacheMaxBytes < 1 {
		return fmt.Errorf("cache max bytes must be at least 1, got %d", c.CacheMaxBytes)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM temperature must be in [0,2], got %v", c.LLMTemperature)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
