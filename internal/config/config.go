package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultPageSize is the explorer pagination page size. Every component that
// paginates receives this value through Config at construction time; there is
// deliberately no per-call page size parameter anywhere in the codebase. An
// earlier incarnation of this service used 50 in one call site and 100 in
// another, which silently skipped qualifying transactions past the first page.
const DefaultPageSize = 100

// Config holds the full service configuration, loaded once and passed by
// construction into every component.
type Config struct {
	// Wallet and collaborator endpoints.
	WalletAddress    string
	ExplorerURL      string
	ParticipationURL string

	// Pagination and batching.
	PageSize          int
	MaxBlocksPerQuery int

	// Distribution parameters.
	TokenName     string
	Decimals      int32
	FeePercentage decimal.Decimal
	FeeAddress    string

	// nanoERG costs reserved before computing the distributable amount.
	TxFeeNanoErg        int64
	MinBoxValueNanoErg  int64
	WalletBufferNanoErg int64

	// Outputs.
	OutputDir   string
	DatabaseURL string

	// Notifications.
	TelegramBotToken string
	TelegramChatID   string

	// Runtime.
	Interval    time.Duration
	HTTPTimeout time.Duration
	MaxRetries  int
	MetricsAddr string
	LogLevel    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("explorer-url", "https://api.ergoplatform.com/api/v1")
	v.SetDefault("participation-url", "https://api.ergominers.com/sigscore/miners/average-participation")
	v.SetDefault("page-size", DefaultPageSize)
	v.SetDefault("max-blocks-per-query", 50)
	v.SetDefault("token-name", "ERG")
	v.SetDefault("decimals", 8)
	v.SetDefault("fee-percentage", "0")
	v.SetDefault("fee-address", "")
	v.SetDefault("tx-fee-nanoerg", 1_000_000)
	v.SetDefault("min-box-value-nanoerg", 1_000_000)
	v.SetDefault("wallet-buffer-nanoerg", 1_000_000)
	v.SetDefault("output-dir", "distributions")
	v.SetDefault("interval", 24*time.Hour)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("metrics-addr", ":2112")
	v.SetDefault("log-level", "info")
}

// Load reads configuration from the given file (optional) and TOKENFLIGHT_*
// environment variables, then validates it.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TOKENFLIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
		}
	}

	feePct, err := decimal.NewFromString(v.GetString("fee-percentage"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid fee-percentage %q: %w", v.GetString("fee-percentage"), err)
	}

	cfg := Config{
		WalletAddress:       v.GetString("wallet-address"),
		ExplorerURL:         v.GetString("explorer-url"),
		ParticipationURL:    v.GetString("participation-url"),
		PageSize:            v.GetInt("page-size"),
		MaxBlocksPerQuery:   v.GetInt("max-blocks-per-query"),
		TokenName:           v.GetString("token-name"),
		Decimals:            v.GetInt32("decimals"),
		FeePercentage:       feePct,
		FeeAddress:          v.GetString("fee-address"),
		TxFeeNanoErg:        v.GetInt64("tx-fee-nanoerg"),
		MinBoxValueNanoErg:  v.GetInt64("min-box-value-nanoerg"),
		WalletBufferNanoErg: v.GetInt64("wallet-buffer-nanoerg"),
		OutputDir:           v.GetString("output-dir"),
		DatabaseURL:         v.GetString("database-url"),
		TelegramBotToken:    v.GetString("telegram-bot-token"),
		TelegramChatID:      v.GetString("telegram-chat-id"),
		Interval:            v.GetDuration("interval"),
		HTTPTimeout:         v.GetDuration("http-timeout"),
		MaxRetries:          v.GetInt("max-retries"),
		MetricsAddr:         v.GetString("metrics-addr"),
		LogLevel:            v.GetString("log-level"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the system relies on.
func (c Config) Validate() error {
	if c.WalletAddress == "" {
		return fmt.Errorf("wallet-address is required")
	}
	if c.ExplorerURL == "" {
		return fmt.Errorf("explorer-url is required")
	}
	if c.ParticipationURL == "" {
		return fmt.Errorf("participation-url is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page-size must be positive, got %d", c.PageSize)
	}
	if c.MaxBlocksPerQuery <= 0 {
		return fmt.Errorf("max-blocks-per-query must be positive, got %d", c.MaxBlocksPerQuery)
	}
	if c.Decimals < 0 {
		return fmt.Errorf("decimals must be non-negative, got %d", c.Decimals)
	}
	if c.FeePercentage.IsNegative() || c.FeePercentage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("fee-percentage must be in [0, 1), got %s", c.FeePercentage)
	}
	if c.FeePercentage.IsPositive() && c.FeeAddress == "" {
		return fmt.Errorf("fee-address is required when fee-percentage is non-zero")
	}
	return nil
}

// FeeSpecified reports whether a pool fee should be taken.
func (c Config) FeeSpecified() bool {
	return c.FeePercentage.IsPositive() && c.FeeAddress != ""
}
