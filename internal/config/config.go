package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

// Config is loaded from environment variables only.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Payment  PaymentConfig
	Redis    RedisConfig
	Events   EventsConfig
	CORS     CORSConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type DatabaseConfig struct {
	URL string
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      currency.Unit
	Timeout       time.Duration
}

// RedisConfig enables the webhook delivery guard when Addr is set.
type RedisConfig struct {
	Addr     string
	GuardTTL time.Duration
}

// EventsConfig enables the outbox relay when Brokers is set.
type EventsConfig struct {
	Brokers  string
	Topic    string
	Interval time.Duration
	Batch    int
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cur, err := currency.ParseISO(getEnv("CURRENCY", "EGP"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: CURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Payment: PaymentConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("PAYMENT_SUCCESS_URL", "http://localhost:8080/orders/success"),
			CancelURL:     getEnv("PAYMENT_CANCEL_URL", "http://localhost:8080/orders/cancel"),
			Currency:      cur,
			Timeout:       getEnvAsDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			GuardTTL: getEnvAsDuration("WEBHOOK_GUARD_TTL", 5*time.Minute),
		},
		Events: EventsConfig{
			Brokers:  getEnv("KAFKA_BROKERS", ""),
			Topic:    getEnv("ORDER_EVENTS_TOPIC", "orders"),
			Interval: getEnvAsDuration("OUTBOX_INTERVAL", 2*time.Second),
			Batch:    getEnvAsInt("OUTBOX_BATCH", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Payment.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}

	if c.Payment.SuccessURL == "" || c.Payment.CancelURL == "" {
		return fmt.Errorf("PAYMENT_SUCCESS_URL and PAYMENT_CANCEL_URL are required")
	}

	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}

	if c.Events.Brokers != "" {
		if c.Events.Topic == "" {
			return fmt.Errorf("ORDER_EVENTS_TOPIC is required when KAFKA_BROKERS is set")
		}
		if c.Events.Interval <= 0 || c.Events.Batch <= 0 {
			return fmt.Errorf("OUTBOX_INTERVAL and OUTBOX_BATCH must be positive")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings such as "500ms" or "2s".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
