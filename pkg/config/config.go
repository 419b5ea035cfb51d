package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Pyth feed for BTC/USD on Hermes.
const BTCUSDFeedID = "0xe62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43"

type Config struct {
	// HTTP
	HTTPPort    int
	HTTPTimeout time.Duration
	LogLevel    string

	// DB
	DBPath string

	// Price feed
	PythHermesURL string
	PythFeedIDs   []string

	// EVM
	EVMRPCURL            string
	TradeContractAddress string // emits TradeExecuted(trader, pnl)
	VaultContractAddress string // getUserBalance / getWithdrawnBalance / getClaimableProfit

	// Leaderboard
	LeaderboardStartBlock    uint64
	LeaderboardConfirmations uint64 // blocks behind head before logs are merged
	LeaderboardLimit         int
	LeaderboardCron          string

	// Growth projection defaults
	GrowthStartBalance float64
	GrowthDays         int
	GrowthMonthlyRate  float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    envInt("HTTP_PORT", 4000),
		HTTPTimeout: time.Duration(envInt("HTTP_TIMEOUT", 15)) * time.Second,
		LogLevel:    envOr("LOG_LEVEL", "info"),

		DBPath: envOr("DB_PATH", "copytrade.db"),

		PythHermesURL: envOr("PYTH_HERMES_URL", "https://hermes.pyth.network"),

		EVMRPCURL:            os.Getenv("EVM_RPC_URL"),
		TradeContractAddress: os.Getenv("TRADE_CONTRACT_ADDRESS"),
		VaultContractAddress: os.Getenv("VAULT_CONTRACT_ADDRESS"),

		LeaderboardConfirmations: 12,
		LeaderboardLimit:         envInt("LEADERBOARD_LIMIT", 10),
		LeaderboardCron:          envOr("LEADERBOARD_CRON", "0 * * * * *"),

		GrowthStartBalance: envFloat("GROWTH_START_BALANCE", 1000),
		GrowthDays:         envInt("GROWTH_DAYS", 30),
		GrowthMonthlyRate:  envFloat("GROWTH_MONTHLY_RATE", 0.20),
	}

	if v := os.Getenv("LEADERBOARD_START_BLOCK"); v != "" {
		b, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("LEADERBOARD_START_BLOCK: %w", err)
		}
		cfg.LeaderboardStartBlock = b
	}
	if v := os.Getenv("LEADERBOARD_CONFIRMATIONS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("LEADERBOARD_CONFIRMATIONS: %w", err)
		}
		cfg.LeaderboardConfirmations = n
	}

	if v := os.Getenv("PYTH_FEED_IDS"); v != "" {
		cfg.PythFeedIDs = splitTrim(v)
	} else {
		cfg.PythFeedIDs = []string{BTCUSDFeedID}
	}

	return cfg, nil
}

// ChainEnabled reports whether an EVM node is configured at all.
func (c *Config) ChainEnabled() bool {
	return c.EVMRPCURL != ""
}

func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if len(c.PythFeedIDs) == 0 {
		return fmt.Errorf("PYTH_FEED_IDS must name at least one feed")
	}
	for name, addr := range map[string]string{
		"TRADE_CONTRACT_ADDRESS": c.TradeContractAddress,
		"VAULT_CONTRACT_ADDRESS": c.VaultContractAddress,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("%s is not a hex address: %q", name, addr)
		}
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive")
	}
	if c.GrowthDays <= 0 {
		return fmt.Errorf("GROWTH_DAYS must be positive")
	}
	return nil
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
