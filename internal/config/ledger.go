package config

import (
	"time"

	"github.com/spf13/viper"
)

// LedgerConfig holds every tunable amount and limit for the investment
// ledger. Amounts are whole PKR.
type LedgerConfig struct {
	FixedInvestment int64
	InitialBonus    int64
	DailyEarning    int64
	ReferralBonus   int64

	MinWithdrawal             int64
	MaxWithdrawal             int64
	MinReferralsForWithdrawal int

	HistoryLimit int
	StoreRetries int

	MaxWithdrawalRequests int
	RateLimitWindow       time.Duration

	BaseURL string
}

// LoadLedgerConfig returns ledger configuration with defaults matching
// the original deployment.
func LoadLedgerConfig() *LedgerConfig {
	viper.SetDefault("ledger.fixed_investment", 6000)
	viper.SetDefault("ledger.initial_bonus", 200)
	viper.SetDefault("ledger.daily_earning", 200)
	viper.SetDefault("ledger.referral_bonus", 200)
	viper.SetDefault("withdraw.min", 1000)
	viper.SetDefault("withdraw.max", 4000)
	viper.SetDefault("withdraw.min_referrals", 2)
	viper.SetDefault("withdraw.max_requests", 5)
	viper.SetDefault("withdraw.rate_limit_window", time.Hour)
	viper.SetDefault("ledger.history_limit", 50)
	viper.SetDefault("store.retries", 3)
	viper.SetDefault("base_url", "http://localhost:8080")

	return &LedgerConfig{
		FixedInvestment:           viper.GetInt64("ledger.fixed_investment"),
		InitialBonus:              viper.GetInt64("ledger.initial_bonus"),
		DailyEarning:              viper.GetInt64("ledger.daily_earning"),
		ReferralBonus:             viper.GetInt64("ledger.referral_bonus"),
		MinWithdrawal:             viper.GetInt64("withdraw.min"),
		MaxWithdrawal:             viper.GetInt64("withdraw.max"),
		MinReferralsForWithdrawal: viper.GetInt("withdraw.min_referrals"),
		HistoryLimit:              viper.GetInt("ledger.history_limit"),
		StoreRetries:              viper.GetInt("store.retries"),
		MaxWithdrawalRequests:     viper.GetInt("withdraw.max_requests"),
		RateLimitWindow:           viper.GetDuration("withdraw.rate_limit_window"),
		BaseURL:                   viper.GetString("base_url"),
	}
}
