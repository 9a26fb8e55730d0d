// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all application configuration. Every contract address the
// core touches comes from here; nothing is read from the environment
// inside adapters.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Aave       AaveConfig       `mapstructure:"aave"`
	Compound   CompoundConfig   `mapstructure:"compound"`
	Safe       SafeConfig       `mapstructure:"safe"`
	Rebalance  RebalanceConfig  `mapstructure:"rebalance"`
	Automation AutomationConfig `mapstructure:"automation"`
	Server     ServerConfig     `mapstructure:"server"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	HTTPURL        string        `mapstructure:"http_url"`
	WebSocketURL   string        `mapstructure:"websocket_url"`
	ChainID        uint64        `mapstructure:"chain_id"`
	RPCRateLimit   float64       `mapstructure:"rpc_rate_limit"` // requests per second
	RPCBurst       int           `mapstructure:"rpc_burst"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// AaveConfig holds Aave V3 contract addresses.
type AaveConfig struct {
	PoolAddress         string `mapstructure:"pool_address"`
	DataProviderAddress string `mapstructure:"data_provider_address"`
}

// PoolAddressHex returns the pool address as common.Address.
func (c *AaveConfig) PoolAddressHex() common.Address {
	return common.HexToAddress(c.PoolAddress)
}

// DataProviderAddressHex returns the data provider address as common.Address.
func (c *AaveConfig) DataProviderAddressHex() common.Address {
	return common.HexToAddress(c.DataProviderAddress)
}

// CompoundConfig holds Compound V3 (Comet) contract addresses.
type CompoundConfig struct {
	CometAddress string `mapstructure:"comet_address"`
}

// CometAddressHex returns the Comet address as common.Address.
func (c *CompoundConfig) CometAddressHex() common.Address {
	return common.HexToAddress(c.CometAddress)
}

// SafeConfig holds the Safe wallet and execution-path addresses.
type SafeConfig struct {
	Address          string `mapstructure:"address"`           // the Safe holding the funds
	ModuleAddress    string `mapstructure:"module_address"`    // authorized execution module
	MultiSendAddress string `mapstructure:"multisend_address"` // batch executor (delegatecall target)
}

// AddressHex returns the Safe address as common.Address.
func (c *SafeConfig) AddressHex() common.Address {
	return common.HexToAddress(c.Address)
}

// ModuleAddressHex returns the module address as common.Address.
func (c *SafeConfig) ModuleAddressHex() common.Address {
	return common.HexToAddress(c.ModuleAddress)
}

// MultiSendAddressHex returns the MultiSend address as common.Address.
func (c *SafeConfig) MultiSendAddressHex() common.Address {
	return common.HexToAddress(c.MultiSendAddress)
}

// RebalanceConfig holds the decision parameters.
type RebalanceConfig struct {
	AssetAddress  string        `mapstructure:"asset_address"`
	AssetSymbol   string        `mapstructure:"asset_symbol"`
	AssetDecimals int           `mapstructure:"asset_decimals"`
	ThresholdBp   int64         `mapstructure:"threshold_bp"`
	PollInterval  time.Duration `mapstructure:"poll_interval"` // watch-mode fallback when no WS
}

// AssetAddressHex returns the asset address as common.Address.
func (c *RebalanceConfig) AssetAddressHex() common.Address {
	return common.HexToAddress(c.AssetAddress)
}

// AutomationConfig holds the external automation-service sink settings.
type AutomationConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// SubmitNoopWhenEmpty keeps compatibility with automation backends
	// that reject an empty transaction list.
	SubmitNoopWhenEmpty bool          `mapstructure:"submit_noop_when_empty"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
}

// ServerConfig holds the JSON API server settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("REBAL")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "REBAL_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "REBAL_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "REBAL_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.http_url", "REBAL_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.websocket_url", "REBAL_ETH_WS_URL", "ETH_WS_URL")
	v.BindEnv("ethereum.chain_id", "REBAL_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	// Protocols
	v.BindEnv("aave.pool_address", "REBAL_AAVE_POOL")
	v.BindEnv("aave.data_provider_address", "REBAL_AAVE_DATA_PROVIDER")
	v.BindEnv("compound.comet_address", "REBAL_COMPOUND_COMET")

	// Safe
	v.BindEnv("safe.address", "REBAL_SAFE_ADDRESS", "SAFE_ADDRESS")
	v.BindEnv("safe.module_address", "REBAL_SAFE_MODULE", "SAFE_MODULE")
	v.BindEnv("safe.multisend_address", "REBAL_SAFE_MULTISEND")

	// Rebalance
	v.BindEnv("rebalance.asset_address", "REBAL_ASSET_ADDRESS")
	v.BindEnv("rebalance.threshold_bp", "REBAL_THRESHOLD_BP")

	// Automation
	v.BindEnv("automation.base_url", "REBAL_AUTOMATION_URL")
	v.BindEnv("automation.api_key", "REBAL_AUTOMATION_API_KEY", "AUTOMATION_API_KEY")

	// Telemetry
	v.BindEnv("telemetry.enabled", "REBAL_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "REBAL_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "REBAL_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "safe-yield-bot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.rpc_rate_limit", 10.0)
	v.SetDefault("ethereum.rpc_burst", 5)
	v.SetDefault("ethereum.initial_backoff", "1s")
	v.SetDefault("ethereum.max_backoff", "30s")

	// Aave V3 Mainnet defaults
	v.SetDefault("aave.pool_address", "0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2")
	v.SetDefault("aave.data_provider_address", "0x7B4EB56E7CD4b454BA8ff71E4518426369a138a3")

	// Compound V3 USDC Comet on Mainnet
	v.SetDefault("compound.comet_address", "0xc3d688B66703497DAA19211EEdff47f25384cdc3")

	// Safe v1.3.0 MultiSend (delegatecall-capable)
	v.SetDefault("safe.multisend_address", "0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761")

	// Rebalance defaults: USDC, 50 bp trigger
	v.SetDefault("rebalance.asset_address", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	v.SetDefault("rebalance.asset_symbol", "USDC")
	v.SetDefault("rebalance.asset_decimals", 6)
	v.SetDefault("rebalance.threshold_bp", 50)
	v.SetDefault("rebalance.poll_interval", "12s")

	// Automation defaults
	v.SetDefault("automation.submit_noop_when_empty", false)
	v.SetDefault("automation.request_timeout", "10s")

	// Server defaults
	v.SetDefault("server.port", 8080)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "safe-yield-bot")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if !common.IsHexAddress(c.Aave.PoolAddress) {
		return fmt.Errorf("invalid aave.pool_address: %s", c.Aave.PoolAddress)
	}
	if !common.IsHexAddress(c.Aave.DataProviderAddress) {
		return fmt.Errorf("invalid aave.data_provider_address: %s", c.Aave.DataProviderAddress)
	}
	if !common.IsHexAddress(c.Compound.CometAddress) {
		return fmt.Errorf("invalid compound.comet_address: %s", c.Compound.CometAddress)
	}
	if !common.IsHexAddress(c.Rebalance.AssetAddress) {
		return fmt.Errorf("invalid rebalance.asset_address: %s", c.Rebalance.AssetAddress)
	}
	if c.Safe.Address != "" && !common.IsHexAddress(c.Safe.Address) {
		return fmt.Errorf("invalid safe.address: %s", c.Safe.Address)
	}
	if c.Safe.ModuleAddress != "" && !common.IsHexAddress(c.Safe.ModuleAddress) {
		return fmt.Errorf("invalid safe.module_address: %s", c.Safe.ModuleAddress)
	}
	if !common.IsHexAddress(c.Safe.MultiSendAddress) {
		return fmt.Errorf("invalid safe.multisend_address: %s", c.Safe.MultiSendAddress)
	}
	if c.Rebalance.ThresholdBp < 0 {
		return fmt.Errorf("rebalance.threshold_bp must be >= 0")
	}
	return nil
}
