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

func TestAccrualService_Accrue(t *testing.T) {
	ctx := context.Background()
	approvedAt := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)

	t.Run("credits one earning per elapsed day", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())
		seedApproved(t, st, "acc-1", approvedAt)

		account, err := svc.Accrue(ctx, "acc-1", approvedAt.AddDate(0, 0, 5))
		require.NoError(t, err)

		assert.Equal(t, int64(200+5*200), account.EarningTotal)
		assert.Equal(t, int64(6000+200+5*200), account.CurrentBalance)
		assert.Len(t, account.EarningsHistory, 6) // initial bonus + 5 days

		last := account.EarningsHistory[len(account.EarningsHistory)-1]
		assert.Equal(t, "Daily Earning", last.Description)
		assert.Equal(t, int64(200), last.Amount)
		assert.Equal(t, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), last.Date)
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())
		seedApproved(t, st, "acc-1", approvedAt)

		account, err := svc.Accrue(ctx, "acc-1", approvedAt.Add(5*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(200), account.EarningTotal)
		assert.Len(t, account.EarningsHistory, 1)
	})

	t.Run("repeated calls credit each day exactly once", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())
		seedApproved(t, st, "acc-1", approvedAt)

		now := approvedAt.AddDate(0, 0, 3)
		for i := 0; i < 4; i++ {
			_, err := svc.Accrue(ctx, "acc-1", now)
			require.NoError(t, err)
		}

		account, err := st.Account(ctx, "acc-1")
		require.NoError(t, err)
		assert.Equal(t, int64(200+3*200), account.EarningTotal)
	})

	t.Run("partial days round down", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())
		seedApproved(t, st, "acc-1", approvedAt)

		// 10:30 on day 0 to 08:00 on day 2 spans two date boundaries.
		account, err := svc.Accrue(ctx, "acc-1", time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(200+2*200), account.EarningTotal)
	})

	t.Run("pending account accrues nothing", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())

		pending := &models.Account{
			ID:            "acc-pending",
			Username:      "pending",
			Status:        models.StatusPending,
			ApplicationAt: approvedAt,
		}
		require.NoError(t, st.InsertAccount(ctx, pending))

		account, err := svc.Accrue(ctx, "acc-pending", approvedAt.AddDate(0, 0, 30))
		require.NoError(t, err)
		assert.Zero(t, account.EarningTotal)
		assert.Empty(t, account.EarningsHistory)
	})

	t.Run("falls back to approval time when accrual timestamp is missing", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())
		seeded := seedApproved(t, st, "acc-1", approvedAt)
		seeded.LastAccrualAt = nil
		require.NoError(t, st.UpdateAccount(ctx, seeded))

		account, err := svc.Accrue(ctx, "acc-1", approvedAt.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(200+2*200), account.EarningTotal)
		require.NotNil(t, account.LastAccrualAt)
		assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), *account.LastAccrualAt)
	})

	t.Run("history is capped at the newest entries", func(t *testing.T) {
		st := store.NewMemory()
		cfg := testConfig()
		svc := NewAccrualService(st, cfg)
		seedApproved(t, st, "acc-1", approvedAt)

		account, err := svc.Accrue(ctx, "acc-1", approvedAt.AddDate(0, 0, 60))
		require.NoError(t, err)

		// Balance reflects all 60 days even though history is trimmed.
		assert.Equal(t, int64(200+60*200), account.EarningTotal)
		require.Len(t, account.EarningsHistory, cfg.HistoryLimit)

		first := account.EarningsHistory[0]
		last := account.EarningsHistory[len(account.EarningsHistory)-1]
		assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), first.Date)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), last.Date)
		assert.True(t, first.Date.Before(last.Date))
	})

	t.Run("unknown account", func(t *testing.T) {
		st := store.NewMemory()
		svc := NewAccrualService(st, testConfig())

		_, err := svc.Accrue(ctx, "missing", approvedAt)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestTrimHistory(t *testing.T) {
	records := make([]models.EarningsRecord, 10)
	for i := range records {
		records[i] = models.EarningsRecord{Amount: int64(i)}
	}

	t.Run("under limit unchanged", func(t *testing.T) {
		assert.Len(t, TrimHistory(records, 20), 10)
	})

	t.Run("over limit keeps newest", func(t *testing.T) {
		trimmed := TrimHistory(records, 3)
		require.Len(t, trimmed, 3)
		assert.Equal(t, int64(7), trimmed[0].Amount)
		assert.Equal(t, int64(9), trimmed[2].Amount)
	})
}
