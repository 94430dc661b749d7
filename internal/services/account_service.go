package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

// Balance adjustment targets.
const (
	FieldInvestment = "investment"
	FieldEarning    = "earning"
)

// AccountService covers account reads, the user's payout-info edit and
// the administrative mutations outside the main workflows.
type AccountService struct {
	store     store.Store
	cfg       *config.LedgerConfig
	validator *ValidationHelper
}

func NewAccountService(st store.Store, cfg *config.LedgerConfig) *AccountService {
	return &AccountService{store: st, cfg: cfg, validator: NewValidationHelper()}
}

func (s *AccountService) Account(ctx context.Context, id string) (*models.Account, error) {
	return s.store.Account(ctx, id)
}

func (s *AccountService) Accounts(ctx context.Context, status string) ([]models.Account, error) {
	return s.store.Accounts(ctx, status)
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteAccount(ctx, id)
}

// SetWithdrawalInfo saves the account's payout destination. Existing
// withdrawal requests keep their snapshot.
func (s *AccountService) SetWithdrawalInfo(ctx context.Context, accountID string, info models.PayoutInfo) (*models.Account, error) {
	if err := s.validator.ValidateStruct(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	return s.mutate(ctx, accountID, func(account *models.Account) error {
		copied := info
		account.WithdrawalInfo = &copied
		return nil
	})
}

// SetWithdrawalOverride sets the admin eligibility override. nil
// removes the override and restores the referral-count rule.
func (s *AccountService) SetWithdrawalOverride(ctx context.Context, accountID string, override *bool) (*models.Account, error) {
	return s.mutate(ctx, accountID, func(account *models.Account) error {
		if override == nil {
			account.WithdrawalEnabled = nil
			return nil
		}
		v := *override
		account.WithdrawalEnabled = &v
		return nil
	})
}

// AdjustBalance applies a manual admin correction to the investment or
// earning total. The adjusted field never goes below zero, and if paid
// withdrawals exceed the reduced totals the cut is limited so the
// reconciled balance lands at zero rather than negative.
func (s *AccountService) AdjustBalance(ctx context.Context, accountID, field string, delta int64) (*models.Account, error) {
	if field != FieldInvestment && field != FieldEarning {
		return nil, fmt.Errorf("%w: unknown balance field %q", models.ErrValidation, field)
	}

	return s.mutate(ctx, accountID, func(account *models.Account) error {
		target := &account.InvestmentTotal
		if field == FieldEarning {
			target = &account.EarningTotal
		}

		before := *target
		*target += delta
		if *target < 0 {
			*target = 0
		}
		account.Reconcile()
		if account.CurrentBalance < 0 {
			*target += -account.CurrentBalance
			account.Reconcile()
		}

		if applied := *target - before; applied != 0 {
			account.EarningsHistory = append(account.EarningsHistory, models.EarningsRecord{
				Date:        time.Now(),
				Amount:      applied,
				Description: "Balance adjustment",
			})
			account.EarningsHistory = TrimHistory(account.EarningsHistory, s.cfg.HistoryLimit)
		}
		return nil
	})
}

// Statistics summarizes the admin dashboard counters.
type Statistics struct {
	PendingSubmissions  int   `json:"pendingSubmissions"`
	ApprovedAccounts    int   `json:"approvedAccounts"`
	PendingWithdrawals  int   `json:"pendingWithdrawals"`
	PendingPayoutTotal  int64 `json:"pendingPayoutTotal"`
	TotalInvested       int64 `json:"totalInvested"`
	TotalEarningsIssued int64 `json:"totalEarningsIssued"`
}

func (s *AccountService) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}

	submissions, err := s.store.Submissions(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	stats.PendingSubmissions = len(submissions)

	accounts, err := s.store.Accounts(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	stats.ApprovedAccounts = len(accounts)
	for _, a := range accounts {
		stats.TotalInvested += a.InvestmentTotal
		stats.TotalEarningsIssued += a.EarningTotal
	}

	withdrawals, err := s.store.WithdrawalsByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	stats.PendingWithdrawals = len(withdrawals)
	for _, w := range withdrawals {
		stats.PendingPayoutTotal += w.Amount
	}
	return stats, nil
}

// mutate runs fn against a fresh copy of the account inside the CAS
// retry loop.
func (s *AccountService) mutate(ctx context.Context, accountID string, fn func(*models.Account) error) (*models.Account, error) {
	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		account, err := s.store.Account(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if err := fn(account); err != nil {
			return nil, err
		}

		err = s.store.UpdateAccount(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
	}
	return nil, models.ErrConflict
}
