package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	BotToken       string
	OperatorChatID int64

	Database DatabaseConfig
	Redis    RedisConfig

	SessionTTL     time.Duration
	LookupTimeout  time.Duration
	StatsSmoothing decimal.Decimal
	MinAmountUSD   decimal.Decimal
	MaxAmountUSD   decimal.Decimal
	DraftMaxAge    time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// RedisConfig holds session store connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken: os.Getenv("BOT_TOKEN"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ceiba21"),
			User:     getEnv("DB_USER", "ceiba21"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	var err error
	if cfg.OperatorChatID, err = getEnvInt64("OPERATOR_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.OperatorChatID == 0 {
		return nil, fmt.Errorf("OPERATOR_CHAT_ID is required")
	}
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	ttlMinutes, err := getEnvInt("SESSION_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	lookupSeconds, err := getEnvInt("LOOKUP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.LookupTimeout = time.Duration(lookupSeconds) * time.Second

	draftHours, err := getEnvInt("DRAFT_MAX_AGE_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.DraftMaxAge = time.Duration(draftHours) * time.Hour

	if cfg.StatsSmoothing, err = getEnvDecimal("STATS_SMOOTHING", "0.2"); err != nil {
		return nil, err
	}
	if cfg.MinAmountUSD, err = getEnvDecimal("MIN_AMOUNT_USD", "1.00"); err != nil {
		return nil, err
	}
	if cfg.MaxAmountUSD, err = getEnvDecimal("MAX_AMOUNT_USD", "10000.00"); err != nil {
		return nil, err
	}
	if cfg.MinAmountUSD.GreaterThanOrEqual(cfg.MaxAmountUSD) {
		return nil, fmt.Errorf("MIN_AMOUNT_USD must be below MAX_AMOUNT_USD")
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number: %w", key, err)
	}
	return d, nil
}
