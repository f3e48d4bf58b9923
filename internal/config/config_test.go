package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("DB_PASSWORD", "test_db_password")
	t.Setenv("OPERATOR_CHAT_ID", "-1001234567890")
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoad_MissingBotToken(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test_db_password")
	t.Setenv("OPERATOR_CHAT_ID", "123")
	t.Setenv("BOT_TOKEN", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_PASSWORD", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_MissingOperatorChat(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPERATOR_CHAT_ID", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "OPERATOR_CHAT_ID")
}

func TestLoad_WithDefaults(t *testing.T) {
	setRequiredEnv(t)
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER",
		"REDIS_ADDR", "REDIS_DB", "SESSION_TTL_MINUTES", "LOOKUP_TIMEOUT_SECONDS",
		"STATS_SMOOTHING", "MIN_AMOUNT_USD", "MAX_AMOUNT_USD", "DRAFT_MAX_AGE_HOURS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, int64(-1001234567890), cfg.OperatorChatID)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "ceiba21", cfg.Database.Name)
	assert.Equal(t, "ceiba21", cfg.Database.User)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 24*time.Hour, cfg.DraftMaxAge)
	assert.Equal(t, "0.2", cfg.StatsSmoothing.String())
	assert.Equal(t, "1.00", cfg.MinAmountUSD.StringFixed(2))
	assert.Equal(t, "10000.00", cfg.MaxAmountUSD.StringFixed(2))
}

func TestLoad_CustomLimits(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL_MINUTES", "15")
	t.Setenv("MIN_AMOUNT_USD", "5.00")
	t.Setenv("MAX_AMOUNT_USD", "500.00")
	t.Setenv("STATS_SMOOTHING", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "5.00", cfg.MinAmountUSD.StringFixed(2))
	assert.Equal(t, "500.00", cfg.MaxAmountUSD.StringFixed(2))
	assert.Equal(t, "0.5", cfg.StatsSmoothing.String())
}

func TestLoad_InvertedLimits(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MIN_AMOUNT_USD", "1000")
	t.Setenv("MAX_AMOUNT_USD", "10")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_BadInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL_MINUTES", "soon")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
