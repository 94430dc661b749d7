package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

// testConfig mirrors the production defaults without touching viper.
func testConfig() *config.LedgerConfig {
	return &config.LedgerConfig{
		FixedInvestment:           6000,
		InitialBonus:              200,
		DailyEarning:              200,
		ReferralBonus:             200,
		MinWithdrawal:             1000,
		MaxWithdrawal:             4000,
		MinReferralsForWithdrawal: 2,
		HistoryLimit:              50,
		StoreRetries:              3,
		MaxWithdrawalRequests:     5,
		RateLimitWindow:           time.Hour,
		BaseURL:                   "http://localhost:8080",
	}
}

// seedApproved inserts an approved account carrying the standard opening
// balances and returns it as stored.
func seedApproved(t *testing.T, st store.AccountStore, id string, approvedAt time.Time) *models.Account {
	t.Helper()

	account := &models.Account{
		ID:              id,
		Name:            "Test Investor",
		Phone:           "03001234567",
		Username:        "investor-" + id,
		Status:          models.StatusApproved,
		InvestmentTotal: 6000,
		EarningTotal:    200,
		ReferralCode:    "code-" + id,
		Referrals:       []string{},
		ApplicationAt:   approvedAt.Add(-24 * time.Hour),
		ApprovalAt:      &approvedAt,
		LastAccrualAt:   &approvedAt,
		EarningsHistory: []models.EarningsRecord{{
			Date:        approvedAt,
			Amount:      200,
			Description: "Initial investment bonus",
		}},
	}
	account.Reconcile()

	require.NoError(t, st.InsertAccount(context.Background(), account))

	stored, err := st.Account(context.Background(), id)
	require.NoError(t, err)
	return stored
}

func boolPtr(v bool) *bool { return &v }
