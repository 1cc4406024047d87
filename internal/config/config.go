package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"real-estate-market/internal/blockchain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Redis    RedisConfig
	Chain    ChainConfig
	Runtime  RuntimeConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret     string
	AdminAccounts []string
	FrontendURL   string
	EnableFaucet  bool
}

// RedisConfig holds the event stream settings. An empty URL disables the relay.
type RedisConfig struct {
	URL    string
	Stream string
}

// ChainConfig holds block production settings
type ChainConfig struct {
	BlockTime      time.Duration
	RelayInterval  time.Duration
	RelayBatchSize int
}

// RuntimeConfig holds the constants of the marketplace, management and governance modules
type RuntimeConfig struct {
	MaxNftToken       uint32
	MaxListingBuyers  int
	MaxPropertyOwners int
	MaxLocationLength int
	PaymentAssetID    uint32

	LettingAgentDeposit decimal.Decimal
	MaxLettingAgents    int
	MaxLocations        int
	MaxProperties       int
	AssetMultiplier     decimal.Decimal
	ExistentialDeposit  decimal.Decimal

	VotingTime        uint64
	MaxVotesForBlock  int
	LowProposal       decimal.Decimal
	HighProposal      decimal.Decimal
	Threshold         uint32
	HighThreshold     uint32
	MinSlashingAmount decimal.Decimal

	MarketplacePalletID string
	ManagementPalletID  string
	GovernancePalletID  string
	TreasuryPalletID    string
}

// DefaultRuntime returns the runtime constants used when nothing overrides them
func DefaultRuntime() RuntimeConfig {
	return RuntimeConfig{
		MaxNftToken:       250,
		MaxListingBuyers:  250,
		MaxPropertyOwners: 250,
		MaxLocationLength: 128,
		PaymentAssetID:    1984,

		LettingAgentDeposit: decimal.NewFromInt(100),
		MaxLettingAgents:    100,
		MaxLocations:        100,
		MaxProperties:       100,
		AssetMultiplier:     decimal.NewFromInt(1),
		ExistentialDeposit:  decimal.NewFromInt(1),

		VotingTime:        30,
		MaxVotesForBlock:  100,
		LowProposal:       decimal.NewFromInt(500),
		HighProposal:      decimal.NewFromInt(10_000),
		Threshold:         51,
		HighThreshold:     67,
		MinSlashingAmount: decimal.NewFromInt(10),

		MarketplacePalletID: blockchain.MarketplacePalletID,
		ManagementPalletID:  blockchain.ManagementPalletID,
		GovernancePalletID:  blockchain.GovernancePalletID,
		TreasuryPalletID:    blockchain.TreasuryPalletID,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Path:     getEnv("SQLITE_PATH", "real_estate_market.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "real_estate_market"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			AdminAccounts: splitList(getEnv("ADMIN_ACCOUNTS", "")),
			FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
			EnableFaucet:  getEnv("ENABLE_FAUCET", "false") == "true",
		},
		Redis: RedisConfig{
			URL:    getEnv("REDIS_URL", ""),
			Stream: getEnv("REDIS_STREAM", "realestate.events"),
		},
		Runtime: DefaultRuntime(),
	}

	var err error
	if config.Chain.BlockTime, err = time.ParseDuration(getEnv("BLOCK_TIME", "6s")); err != nil {
		return nil, fmt.Errorf("invalid BLOCK_TIME: %w", err)
	}
	if config.Chain.RelayInterval, err = time.ParseDuration(getEnv("EVENT_RELAY_INTERVAL", "2s")); err != nil {
		return nil, fmt.Errorf("invalid EVENT_RELAY_INTERVAL: %w", err)
	}
	if config.Chain.RelayBatchSize, err = strconv.Atoi(getEnv("EVENT_RELAY_BATCH", "100")); err != nil {
		return nil, fmt.Errorf("invalid EVENT_RELAY_BATCH: %w", err)
	}

	if path := getEnv("RUNTIME_CONFIG", ""); path != "" {
		if err := config.Runtime.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := config.Runtime.applyEnv(); err != nil {
		return nil, err
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite")
	}
	if config.Chain.BlockTime <= 0 {
		return nil, fmt.Errorf("BLOCK_TIME must be positive")
	}
	if err := config.Runtime.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// IsAdmin reports whether account is listed in ADMIN_ACCOUNTS
func (a AppConfig) IsAdmin(account string) bool {
	for _, admin := range a.AdminAccounts {
		if admin == account {
			return true
		}
	}
	return false
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
