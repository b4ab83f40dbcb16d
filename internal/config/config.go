package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds every environment-driven setting, including the policy knobs
// the business rules deliberately leave configurable (loyalty earn rate,
// low-stock threshold, default commission rate).
type Config struct {
	Port        string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	TokenTTLHours int

	// TxTimeoutSeconds caps how long a single database transaction may run,
	// lock waits included. Zero disables the cap.
	TxTimeoutSeconds int

	LowStockThreshold     int
	LoyaltyEarnRate       decimal.Decimal
	DefaultCommissionRate decimal.Decimal

	SeedAdminUsername string
	SeedAdminPassword string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	threshold, err := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "20"))
	if err != nil || threshold < 0 {
		threshold = 20
	}
	tokenTTL, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 24
	}
	txTimeout, err := strconv.Atoi(getEnv("TX_TIMEOUT_SECONDS", "10"))
	if err != nil || txTimeout < 0 {
		txTimeout = 10
	}

	earnRate, err := decimal.NewFromString(getEnv("LOYALTY_EARN_RATE", "1.0"))
	if err != nil || earnRate.IsNegative() {
		earnRate = decimal.NewFromInt(1)
	}
	commissionRate, err := decimal.NewFromString(getEnv("DEFAULT_COMMISSION_RATE", "0.05"))
	if err != nil || commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(1)) {
		commissionRate = decimal.NewFromFloat(0.05)
	}

	return Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLHours: tokenTTL,

		TxTimeoutSeconds: txTimeout,

		LowStockThreshold:     threshold,
		LoyaltyEarnRate:       earnRate,
		DefaultCommissionRate: commissionRate,

		SeedAdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
