package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKENFLIGHT_WALLET_ADDRESS", "9fPool")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9fPool", cfg.WalletAddress)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, 50, cfg.MaxBlocksPerQuery)
	assert.Equal(t, "ERG", cfg.TokenName)
	assert.Equal(t, int32(8), cfg.Decimals)
	assert.Equal(t, 24*time.Hour, cfg.Interval)
	// No fee is taken unless both the percentage and address are configured.
	assert.True(t, cfg.FeePercentage.IsZero())
	assert.False(t, cfg.FeeSpecified())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TOKENFLIGHT_WALLET_ADDRESS", "9fPool")
	t.Setenv("TOKENFLIGHT_PAGE_SIZE", "250")
	t.Setenv("TOKENFLIGHT_FEE_PERCENTAGE", "0.02")
	t.Setenv("TOKENFLIGHT_FEE_ADDRESS", "9fFee")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.PageSize)
	assert.True(t, cfg.FeePercentage.Equal(decimal.NewFromFloat(0.02)))
	assert.True(t, cfg.FeeSpecified())
}

func TestValidate(t *testing.T) {
	valid := Config{
		WalletAddress:     "9fPool",
		ExplorerURL:       "https://api.ergoplatform.com/api/v1",
		ParticipationURL:  "https://api.ergominers.com/sigscore/miners/average-participation",
		PageSize:          100,
		MaxBlocksPerQuery: 50,
		Decimals:          8,
		FeePercentage:     decimal.Zero,
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing wallet",
			mutate:  func(c *Config) { c.WalletAddress = "" },
			wantErr: "wallet-address",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.PageSize = 0 },
			wantErr: "page-size",
		},
		{
			name:    "fee of one",
			mutate:  func(c *Config) { c.FeePercentage = decimal.NewFromInt(1) },
			wantErr: "fee-percentage",
		},
		{
			name:    "negative fee",
			mutate:  func(c *Config) { c.FeePercentage = decimal.NewFromInt(-1) },
			wantErr: "fee-percentage",
		},
		{
			name:    "fee without address",
			mutate:  func(c *Config) { c.FeePercentage = decimal.NewFromFloat(0.01) },
			wantErr: "fee-address",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
