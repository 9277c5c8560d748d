package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	DatabaseURL       string // empty: in-memory stores
	JWTSecret         string
	PriceFeedURL      string // empty: static feed below
	PriceFeedStatic   string // integer price used by the static feed
	PriceFeedDecimals int
	TreasuryURL       string // empty: dev transferrer that moves no value
	KafkaBrokers      []string
	KafkaTopic        string
	CORSOrigins       []string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		PriceFeedURL:      os.Getenv("PRICE_FEED_URL"),
		PriceFeedStatic:   getEnv("PRICE_FEED_STATIC", "100000000"),
		PriceFeedDecimals: getEnvInt("PRICE_FEED_DECIMALS", 8),
		TreasuryURL:       os.Getenv("TREASURY_URL"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "blockpay.ledger"),
		CORSOrigins:       splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.PriceFeedDecimals < 0 || cfg.PriceFeedDecimals > 18 {
		return nil, fmt.Errorf("PRICE_FEED_DECIMALS must be between 0 and 18")
	}

	if cfg.AppEnv != "development" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required outside development")
		}
		if cfg.TreasuryURL == "" {
			return nil, fmt.Errorf("TREASURY_URL is required outside development")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
