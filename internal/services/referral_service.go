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

// ReferralService pays the one-time referral bonus. The granted set on
// the referrer's record guarantees at most one bonus per referred
// account no matter how often a grant is attempted.
type ReferralService struct {
	accounts store.AccountStore
	cfg      *config.LedgerConfig
}

func NewReferralService(accounts store.AccountStore, cfg *config.LedgerConfig) *ReferralService {
	return &ReferralService{accounts: accounts, cfg: cfg}
}

// Grant credits the referral bonus to referrerID for referredID.
// Granting twice for the same referred account is a no-op.
func (s *ReferralService) Grant(ctx context.Context, referrerID, referredID, referredName string) error {
	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		referrer, err := s.accounts.Account(ctx, referrerID)
		if err != nil {
			return err
		}

		if referrer.HasGranted(referredID) {
			return nil
		}

		referrer.Referrals = append(referrer.Referrals, referredID)
		referrer.ReferralsGranted = append(referrer.ReferralsGranted, referredID)
		referrer.EarningTotal += s.cfg.ReferralBonus
		referrer.Reconcile()
		referrer.EarningsHistory = append(referrer.EarningsHistory, models.EarningsRecord{
			Date:        time.Now(),
			Amount:      s.cfg.ReferralBonus,
			Description: fmt.Sprintf("Referral bonus for %s", referredName),
		})
		referrer.EarningsHistory = TrimHistory(referrer.EarningsHistory, s.cfg.HistoryLimit)
		referrer.PendingNotification = referredName

		err = s.accounts.UpdateAccount(ctx, referrer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
	}
	return models.ErrConflict
}

// ApprovedReferralCount counts the account's referrals whose referred
// account currently has approved status. The raw referral list can
// hold ids that were never approved or were deleted since; eligibility
// must not count those.
func (s *ReferralService) ApprovedReferralCount(ctx context.Context, account *models.Account) (int, error) {
	count := 0
	for _, id := range account.Referrals {
		referred, err := s.accounts.Account(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if referred.Status == models.StatusApproved {
			count++
		}
	}
	return count, nil
}

// ConsumeNotification returns and clears the account's pending referral
// notification. A second call returns empty.
func (s *ReferralService) ConsumeNotification(ctx context.Context, accountID string) (string, error) {
	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		account, err := s.accounts.Account(ctx, accountID)
		if err != nil {
			return "", err
		}
		if account.PendingNotification == "" {
			return "", nil
		}

		name := account.PendingNotification
		account.PendingNotification = ""
		err = s.accounts.UpdateAccount(ctx, account)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return "", err
		}
	}
	return "", models.ErrConflict
}
