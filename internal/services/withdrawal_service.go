package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

// WithdrawalService runs the withdrawal state machine. The requested
// amount is reserved (debited) when the request is created so that
// concurrent requests cannot overdraw; rejection refunds the exact
// amount, approval leaves the debit standing.
type WithdrawalService struct {
	store     store.Store
	referrals *ReferralService
	redis     *redis.Client
	cfg       *config.LedgerConfig
}

func NewWithdrawalService(st store.Store, referrals *ReferralService, redisClient *redis.Client, cfg *config.LedgerConfig) *WithdrawalService {
	return &WithdrawalService{
		store:     st,
		referrals: referrals,
		redis:     redisClient,
		cfg:       cfg,
	}
}

// Request creates a pending withdrawal and reserves the amount against
// the account balance.
func (s *WithdrawalService) Request(ctx context.Context, accountID string, amount int64) (*models.WithdrawalRequest, error) {
	if err := s.checkRateLimit(ctx, accountID); err != nil {
		return nil, err
	}

	var account *models.Account
	for attempt := 0; ; attempt++ {
		var err error
		account, err = s.store.Account(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if err := s.validateRequest(ctx, account, amount); err != nil {
			return nil, err
		}

		// Reserve before the request exists: TotalWithdrawals carries
		// the debit so the balance identity keeps holding.
		account.TotalWithdrawals += amount
		account.Reconcile()

		err = s.store.UpdateAccount(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrConflict) || attempt+1 >= s.cfg.StoreRetries {
			return nil, err
		}
	}

	request := &models.WithdrawalRequest{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		HolderName:     account.Name,
		Amount:         amount,
		Status:         models.StatusPending,
		RequestedAt:    time.Now(),
		PayoutSnapshot: *account.WithdrawalInfo,
	}
	if err := s.store.InsertWithdrawal(ctx, request); err != nil {
		// The reservation already landed; give it back.
		if refundErr := s.adjustReservation(ctx, accountID, -amount); refundErr != nil {
			log.Printf("failed to refund reservation for account %s: %v", accountID, refundErr)
		}
		return nil, err
	}

	s.noteRequest(ctx, accountID)
	return request, nil
}

func (s *WithdrawalService) validateRequest(ctx context.Context, account *models.Account, amount int64) error {
	if amount < s.cfg.MinWithdrawal || amount > s.cfg.MaxWithdrawal {
		return fmt.Errorf("%w: amount must be between %d and %d",
			models.ErrValidation, s.cfg.MinWithdrawal, s.cfg.MaxWithdrawal)
	}
	if amount > account.CurrentBalance {
		return models.ErrInsufficientBalance
	}

	// The admin override dominates in both directions; only an unset
	// override falls through to the referral-count rule.
	switch {
	case account.WithdrawalEnabled != nil && !*account.WithdrawalEnabled:
		return fmt.Errorf("%w: withdrawals disabled by admin", models.ErrEligibility)
	case account.WithdrawalEnabled == nil:
		count, err := s.referrals.ApprovedReferralCount(ctx, account)
		if err != nil {
			return err
		}
		if count < s.cfg.MinReferralsForWithdrawal {
			return fmt.Errorf("%w: %d approved referrals required, have %d",
				models.ErrEligibility, s.cfg.MinReferralsForWithdrawal, count)
		}
	}

	if account.WithdrawalInfo == nil {
		return models.ErrMissingPayoutInfo
	}
	return nil
}

// Decide applies the admin decision to a pending request. Rejection
// refunds the reserved amount; approval is an irrevocable payout.
func (s *WithdrawalService) Decide(ctx context.Context, requestID, decision string) error {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return fmt.Errorf("%w: unknown decision %q", models.ErrValidation, decision)
	}

	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		request, err := s.store.Withdrawal(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.StatusPending {
			return fmt.Errorf("%w: request already %s", models.ErrInvalidState, request.Status)
		}

		request.Status = decision
		err = s.store.UpdateWithdrawal(ctx, request)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}

		if decision == models.StatusRejected {
			return s.adjustReservation(ctx, request.AccountID, -request.Amount)
		}
		return nil
	}
	return models.ErrConflict
}

// History lists the account's withdrawal requests, newest first.
func (s *WithdrawalService) History(ctx context.Context, accountID string) ([]models.WithdrawalRequest, error) {
	return s.store.Withdrawals(ctx, accountID)
}

// Pending lists all requests awaiting an admin decision.
func (s *WithdrawalService) Pending(ctx context.Context) ([]models.WithdrawalRequest, error) {
	return s.store.WithdrawalsByStatus(ctx, models.StatusPending)
}

// adjustReservation moves TotalWithdrawals by delta and reconciles,
// retrying on CAS conflicts. A negative delta is a refund.
func (s *WithdrawalService) adjustReservation(ctx context.Context, accountID string, delta int64) error {
	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		account, err := s.store.Account(ctx, accountID)
		if err != nil {
			return err
		}
		account.TotalWithdrawals += delta
		if account.TotalWithdrawals < 0 {
			account.TotalWithdrawals = 0
		}
		account.Reconcile()

		err = s.store.UpdateAccount(ctx, account)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
	}
	return models.ErrConflict
}

// checkRateLimit caps how many withdrawal requests an account may open
// per window. Without redis the limit is not enforced.
func (s *WithdrawalService) checkRateLimit(ctx context.Context, accountID string) error {
	if s.redis == nil {
		return nil
	}

	key := fmt.Sprintf("withdrawal_rate:%s", accountID)
	count, err := s.redis.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return err
	}
	if count >= s.cfg.MaxWithdrawalRequests {
		return fmt.Errorf("%w: too many withdrawal requests, try again later", models.ErrValidation)
	}
	return nil
}

func (s *WithdrawalService) noteRequest(ctx context.Context, accountID string) {
	if s.redis == nil {
		return
	}

	key := fmt.Sprintf("withdrawal_rate:%s", accountID)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.cfg.RateLimitWindow)
	pipe.Exec(ctx)
}
