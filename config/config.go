package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"matka/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Timezone all market open/close times are interpreted in
	MarketTimezone string

	// Wallet policy defaults; snapshotted per operation via Policy()
	BonusSpendable    bool
	ReferralBonus     decimal.Decimal
	MinBidAmount      int64
	MinDepositAmount  decimal.Decimal
	MinWithdrawAmount decimal.Decimal

	// Environment is "development", "production" or "test"
	Environment string
	LogLevel    string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Policy captures the current wallet policy as an immutable snapshot.
// Operations receive this snapshot explicitly so they stay reproducible
// even if settings change mid-flight.
func (c *Config) Policy() models.PolicySnapshot {
	return models.PolicySnapshot{
		BonusSpendable:    c.BonusSpendable,
		ReferralBonus:     c.ReferralBonus,
		MinBidAmount:      c.MinBidAmount,
		MinDepositAmount:  c.MinDepositAmount,
		MinWithdrawAmount: c.MinWithdrawAmount,
	}
}

// load loads configuration from the environment, with .env as a fallback
func load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MarketTimezone: os.Getenv("MARKET_TIMEZONE"),
		Environment:    os.Getenv("ENVIRONMENT"),
		LogLevel:       os.Getenv("LOG_LEVEL"),

		// Policy defaults
		BonusSpendable:    true,
		ReferralBonus:     decimal.NewFromInt(50),
		MinBidAmount:      10,
		MinDepositAmount:  decimal.NewFromInt(100),
		MinWithdrawAmount: decimal.NewFromInt(500),
	}

	if config.MarketTimezone == "" {
		config.MarketTimezone = "Asia/Kolkata"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if v := os.Getenv("BONUS_SPENDABLE"); v != "" {
		config.BonusSpendable = v == "true"
	}
	if v := os.Getenv("REFERRAL_BONUS"); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			config.ReferralBonus = parsed
		}
	}
	if v := os.Getenv("MIN_BID_AMOUNT"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MinBidAmount = parsed
		}
	}
	if v := os.Getenv("MIN_DEPOSIT_AMOUNT"); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			config.MinDepositAmount = parsed
		}
	}
	if v := os.Getenv("MIN_WITHDRAW_AMOUNT"); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			config.MinWithdrawAmount = parsed
		}
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
