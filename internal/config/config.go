package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// DefaultMetadataURI is the placeholder ERC-1155 metadata template. It is the
// same for every project id in this version.
const DefaultMetadataURI = "https://api.basecarboncanopy.example/metadata/{id}.json"

// Config holds application configuration (env + Viper).
type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	RedisURL     string
	EventChannel string

	// ChainID identifies the network the simulated ledger mirrors
	// (default Base Sepolia).
	ChainID int64

	// AdminAddress is the administrator / issuance authority. It is also the
	// fee receiver for trades. Set at startup and immutable thereafter.
	AdminAddress common.Address

	// TradingFeePercent is the integer percentage of trade value withheld
	// from the seller's proceeds. Set at startup and immutable thereafter.
	TradingFeePercent int64

	MetadataURI string

	StatsIntervalSeconds int
	SeedDemoData         bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}

	chainID := viper.GetInt64("CHAIN_ID")
	if chainID == 0 {
		chainID = 84532 // Base Sepolia
	}

	feePercent := int64(1)
	if viper.IsSet("TRADING_FEE_PERCENT") {
		feePercent = viper.GetInt64("TRADING_FEE_PERCENT")
	}
	if feePercent < 0 || feePercent > 100 {
		return nil, fmt.Errorf("TRADING_FEE_PERCENT must be between 0 and 100, got %d", feePercent)
	}

	var admin common.Address
	if raw := viper.GetString("ADMIN_ADDRESS"); raw != "" {
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("ADMIN_ADDRESS is not a valid hex address: %s", raw)
		}
		admin = common.HexToAddress(raw)
	}

	uri := viper.GetString("METADATA_URI")
	if uri == "" {
		uri = DefaultMetadataURI
	}

	channel := viper.GetString("EVENT_CHANNEL")
	if channel == "" {
		channel = "canopy:ledger:events"
	}

	interval := viper.GetInt("STATS_INTERVAL_SECONDS")
	if interval <= 0 {
		interval = 300
	}

	return &Config{
		Env:                  env,
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             viper.GetString("REDIS_URL"),
		EventChannel:         channel,
		ChainID:              chainID,
		AdminAddress:         admin,
		TradingFeePercent:    feePercent,
		MetadataURI:          uri,
		StatsIntervalSeconds: interval,
		SeedDemoData:         strings.EqualFold(viper.GetString("SEED_DEMO_DATA"), "true"),
	}, nil
}
