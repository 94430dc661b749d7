package services

import (
	"context"
	"errors"
	"time"

	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

// AccrualService brings an approved account's earnings up to date in
// whole-day steps. Calling it any number of times with the same or an
// increasing "now" credits each calendar day exactly once.
type AccrualService struct {
	accounts store.AccountStore
	cfg      *config.LedgerConfig
}

func NewAccrualService(accounts store.AccountStore, cfg *config.LedgerConfig) *AccrualService {
	return &AccrualService{accounts: accounts, cfg: cfg}
}

// Accrue applies the daily-earning catch-up for the account as of now
// and returns the refreshed record. Accounts that are not approved, or
// already accrued today, are returned unchanged.
func (s *AccrualService) Accrue(ctx context.Context, accountID string, now time.Time) (*models.Account, error) {
	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		account, err := s.accounts.Account(ctx, accountID)
		if err != nil {
			return nil, err
		}

		if !s.apply(account, now) {
			return account, nil
		}

		err = s.accounts.UpdateAccount(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		// Lost the race; re-read and recompute from the stored record.
	}
	return nil, models.ErrConflict
}

// apply mutates the account in place and reports whether anything
// changed.
func (s *AccrualService) apply(account *models.Account, now time.Time) bool {
	if account.Status != models.StatusApproved {
		return false
	}

	// approvalAt as a fallback keeps a missing accrual timestamp from
	// producing years of earnings off the epoch default.
	base := account.LastAccrualAt
	if base == nil {
		base = account.ApprovalAt
	}
	if base == nil {
		return false
	}

	baseDay := midnight(*base)
	today := midnight(now)
	days := int(today.Sub(baseDay).Hours() / 24)
	if days <= 0 {
		return false
	}

	for i := 1; i <= days; i++ {
		account.EarningTotal += s.cfg.DailyEarning
		account.EarningsHistory = append(account.EarningsHistory, models.EarningsRecord{
			Date:        baseDay.AddDate(0, 0, i),
			Amount:      s.cfg.DailyEarning,
			Description: "Daily Earning",
		})
	}
	account.Reconcile()
	account.LastAccrualAt = &today
	account.EarningsHistory = TrimHistory(account.EarningsHistory, s.cfg.HistoryLimit)
	return true
}

// TrimHistory keeps the newest limit entries, dropping the oldest first.
func TrimHistory(history []models.EarningsRecord, limit int) []models.EarningsRecord {
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

// midnight strips the time of day; accrual is date-granular. UTC keeps
// the day boundary independent of where the request came from.
func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
