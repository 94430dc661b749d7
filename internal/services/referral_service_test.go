package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

func TestReferralService_Grant(t *testing.T) {
	ctx := context.Background()
	approvedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("credits the bonus once", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewReferralService(st, testConfig())
		seedApproved(t, st, "referrer", approvedAt)
		seedApproved(t, st, "referred", approvedAt)

		require.NoError(t, svc.Grant(ctx, "referrer", "referred", "Sana Khan"))

		account, err := st.Account(ctx, "referrer")
		require.NoError(t, err)
		assert.Equal(t, int64(200+200), account.EarningTotal)
		assert.Equal(t, int64(6000+400), account.CurrentBalance)
		assert.Equal(t, []string{"referred"}, account.Referrals)
		assert.Equal(t, []string{"referred"}, account.ReferralsGranted)
		assert.Equal(t, "Sana Khan", account.PendingNotification)

		last := account.EarningsHistory[len(account.EarningsHistory)-1]
		assert.Equal(t, "Referral bonus for Sana Khan", last.Description)
		assert.Equal(t, int64(200), last.Amount)
	})

	t.Run("second grant for the same referred account is a no-op", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewReferralService(st, testConfig())
		seedApproved(t, st, "referrer", approvedAt)
		seedApproved(t, st, "referred", approvedAt)

		require.NoError(t, svc.Grant(ctx, "referrer", "referred", "Sana Khan"))
		require.NoError(t, svc.Grant(ctx, "referrer", "referred", "Sana Khan"))

		account, err := st.Account(ctx, "referrer")
		require.NoError(t, err)
		assert.Equal(t, int64(400), account.EarningTotal)
		assert.Len(t, account.Referrals, 1)
		assert.Len(t, account.ReferralsGranted, 1)
	})

	t.Run("distinct referred accounts each pay out", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewReferralService(st, testConfig())
		seedApproved(t, st, "referrer", approvedAt)
		seedApproved(t, st, "first", approvedAt)
		seedApproved(t, st, "second", approvedAt)

		require.NoError(t, svc.Grant(ctx, "referrer", "first", "First"))
		require.NoError(t, svc.Grant(ctx, "referrer", "second", "Second"))

		account, err := st.Account(ctx, "referrer")
		require.NoError(t, err)
		assert.Equal(t, int64(200+2*200), account.EarningTotal)
		assert.Equal(t, []string{"first", "second"}, account.Referrals)
	})

	t.Run("unknown referrer", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewReferralService(st, testConfig())

		err := svc.Grant(ctx, "missing", "referred", "Someone")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestReferralService_ApprovedReferralCount(t *testing.T) {
	ctx := context.Background()
	approvedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	st := store.NewMemory()
	svc := NewReferralService(st, testConfig())

	referrer := seedApproved(t, st, "referrer", approvedAt)
	seedApproved(t, st, "approved-1", approvedAt)
	seedApproved(t, st, "approved-2", approvedAt)

	rejected := &models.Account{
		ID:            "rejected-1",
		Username:      "rejected1",
		Status:        models.StatusRejected,
		ApplicationAt: approvedAt,
	}
	require.NoError(t, st.InsertAccount(ctx, rejected))

	referrer.Referrals = []string{"approved-1", "approved-2", "rejected-1", "deleted-1"}
	require.NoError(t, st.UpdateAccount(ctx, referrer))

	account, err := st.Account(ctx, "referrer")
	require.NoError(t, err)

	count, err := svc.ApprovedReferralCount(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReferralService_ConsumeNotification(t *testing.T) {
	ctx := context.Background()
	approvedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	st := store.NewMemory()
	svc := NewReferralService(st, testConfig())
	seedApproved(t, st, "referrer", approvedAt)
	seedApproved(t, st, "referred", approvedAt)

	require.NoError(t, svc.Grant(ctx, "referrer", "referred", "Sana Khan"))

	name, err := svc.ConsumeNotification(ctx, "referrer")
	require.NoError(t, err)
	assert.Equal(t, "Sana Khan", name)

	// Cleared by the first read.
	name, err = svc.ConsumeNotification(ctx, "referrer")
	require.NoError(t, err)
	assert.Empty(t, name)

	account, err := st.Account(ctx, "referrer")
	require.NoError(t, err)
	assert.Empty(t, account.PendingNotification)
}
