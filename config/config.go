// Package config loads the bot's settings: process-level knobs from the
// environment, the instrument roster from a YAML file.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all env-parsed process configuration.
type Config struct {
	// Broker access. A static token wins; otherwise the session credentials
	// must all be present.
	BrokerToken      string
	BrokerClientCode string
	BrokerPassword   string
	BrokerTOTPSecret string
	BrokerRootURL    string
	BrokerStreamURL  string
	BrokerAccountID  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LedgerPath      string
	InstrumentsPath string
	HTTPAddr        string

	CycleInterval time.Duration
	DryRunBalance float64

	TelegramToken  string
	TelegramChatID string
	WebhookURL     string
}

// Load reads configuration from environment variables with sensible defaults.
// Validation happens where the values are used.
func Load() Config {
	cycleSec, _ := strconv.Atoi(getEnv("CYCLE_INTERVAL_SEC", "60"))
	if cycleSec <= 0 {
		cycleSec = 60
	}
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	dryBalance, _ := strconv.ParseFloat(getEnv("DRY_RUN_BALANCE", "100000"), 64)
	if dryBalance <= 0 {
		dryBalance = 100000
	}

	return Config{
		BrokerToken:      getEnv("BROKER_TOKEN", ""),
		BrokerClientCode: getEnv("BROKER_CLIENT_CODE", ""),
		BrokerPassword:   getEnv("BROKER_PASSWORD", ""),
		BrokerTOTPSecret: getEnv("BROKER_TOTP_SECRET", ""),
		BrokerRootURL:    getEnv("BROKER_ROOT_URL", ""),
		BrokerStreamURL:  getEnv("BROKER_STREAM_URL", ""),
		BrokerAccountID:  getEnv("BROKER_ACCOUNT_ID", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		LedgerPath:      getEnv("LEDGER_PATH", "data/trades.db"),
		InstrumentsPath: getEnv("INSTRUMENTS_PATH", "instruments.yaml"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":9090"),

		CycleInterval: time.Duration(cycleSec) * time.Second,
		DryRunBalance: dryBalance,

		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
