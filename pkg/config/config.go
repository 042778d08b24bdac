package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Routing    RoutingConfig
	Pricing    PricingConfig
	Events     EventsConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// RoutingConfig holds the external routing provider configuration. When
// disabled, trips are estimated with haversine distances.
type RoutingConfig struct {
	Enabled       bool
	BaseURL       string
	APIKey        string
	TimeoutSecs   int
	CacheTTLSecs  int
	WithTollCosts bool
}

// PricingConfig carries process-level pricing defaults and thresholds.
// Per-organization settings loaded from the database override these.
type PricingConfig struct {
	Timezone                 string // business wall-clock, e.g. Europe/Paris
	DefaultDistanceKm        float64
	DefaultDurationMinutes   int
	DefaultRatePerKm         float64
	DefaultRatePerHour       float64
	DefaultTargetMarginPct   float64
	GreenMarginThresholdPct  float64
	OrangeMarginThresholdPct float64
	QuoteValidityDays        int
	FuelPriceCacheTTLMins    int
}

// EventsConfig holds NATS settings for domain event publication.
type EventsConfig struct {
	Enabled    bool
	URL        string
	StreamName string
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-provider breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "chauffio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},
		Routing: RoutingConfig{
			Enabled:       getEnvAsBool("ROUTING_ENABLED", false),
			BaseURL:       getEnv("ROUTING_BASE_URL", "https://routes.googleapis.com"),
			APIKey:        getEnv("ROUTING_API_KEY", ""),
			TimeoutSecs:   getEnvAsInt("ROUTING_TIMEOUT_SECONDS", 5),
			CacheTTLSecs:  getEnvAsInt("ROUTING_CACHE_TTL_SECONDS", 600),
			WithTollCosts: getEnvAsBool("ROUTING_WITH_TOLLS", true),
		},
		Pricing: PricingConfig{
			Timezone:                 getEnv("PRICING_TIMEZONE", "Europe/Paris"),
			DefaultDistanceKm:        getEnvAsFloat("PRICING_DEFAULT_DISTANCE_KM", 30),
			DefaultDurationMinutes:   getEnvAsInt("PRICING_DEFAULT_DURATION_MIN", 45),
			DefaultRatePerKm:         getEnvAsFloat("PRICING_DEFAULT_RATE_PER_KM", 1.8),
			DefaultRatePerHour:       getEnvAsFloat("PRICING_DEFAULT_RATE_PER_HOUR", 45),
			DefaultTargetMarginPct:   getEnvAsFloat("PRICING_DEFAULT_TARGET_MARGIN_PCT", 20),
			GreenMarginThresholdPct:  getEnvAsFloat("PRICING_GREEN_MARGIN_PCT", 20),
			OrangeMarginThresholdPct: getEnvAsFloat("PRICING_ORANGE_MARGIN_PCT", 0),
			QuoteValidityDays:        getEnvAsInt("QUOTE_VALIDITY_DAYS", 30),
			FuelPriceCacheTTLMins:    getEnvAsInt("FUEL_PRICE_CACHE_TTL_MIN", 360),
		},
		Events: EventsConfig{
			Enabled:    getEnvAsBool("EVENTS_ENABLED", false),
			URL:        getEnv("NATS_URL", "nats://localhost:4222"),
			StreamName: getEnv("NATS_STREAM", "CHAUFFIO"),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", true),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	if cfg.Resilience.CircuitBreaker.FailureThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.FailureThreshold = 5
	}
	if cfg.Resilience.CircuitBreaker.SuccessThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.SuccessThreshold = 1
	}
	if cfg.Resilience.CircuitBreaker.TimeoutSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.TimeoutSeconds = 30
	}
	if cfg.Resilience.CircuitBreaker.IntervalSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.IntervalSeconds = 60
	}

	if _, err := time.LoadLocation(cfg.Pricing.Timezone); err != nil {
		return nil, fmt.Errorf("invalid PRICING_TIMEZONE %q: %w", cfg.Pricing.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured business timezone.
func (c PricingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RoutingTimeout returns the provider call timeout as a duration.
func (c RoutingConfig) RoutingTimeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RouteCacheTTL returns the routing cache TTL as a duration.
func (c RoutingConfig) RouteCacheTTL() time.Duration {
	if c.CacheTTLSecs <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
