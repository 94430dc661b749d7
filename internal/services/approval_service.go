package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

// ApprovalService owns the payment-submission lifecycle: intake, and
// the admin decision that either promotes a submission to an approved
// account or marks it rejected.
type ApprovalService struct {
	store     store.Store
	referrals *ReferralService
	cfg       *config.LedgerConfig
	validator *ValidationHelper
}

func NewApprovalService(st store.Store, referrals *ReferralService, cfg *config.LedgerConfig) *ApprovalService {
	return &ApprovalService{
		store:     st,
		referrals: referrals,
		cfg:       cfg,
		validator: NewValidationHelper(),
	}
}

// SubmitPaymentRequest is the intake form payload.
type SubmitPaymentRequest struct {
	HolderName    string `json:"holderName" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required,min=7,max=20"`
	Username      string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	Platform      string `json:"platform" validate:"required,oneof=easypaisa jazzcash bank"`
	ScreenshotRef string `json:"screenshotRef" validate:"required,max=255"`
	ReferralCode  string `json:"referralCode" validate:"omitempty,max=40"`
}

// SubmitPayment records a pending proof-of-payment application.
func (s *ApprovalService) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*models.PaymentSubmission, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if _, err := s.store.AccountByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", models.ErrValidation)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	submission := &models.PaymentSubmission{
		ID:            uuid.NewString(),
		HolderName:    req.HolderName,
		Phone:         req.Phone,
		Username:      req.Username,
		PasswordHash:  hash,
		Platform:      req.Platform,
		ScreenshotRef: req.ScreenshotRef,
		Status:        models.StatusPending,
		SubmittedAt:   time.Now(),
		ReferralCode:  req.ReferralCode,
	}
	if err := s.store.InsertSubmission(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// SubmissionStatus returns the submission for status polling.
func (s *ApprovalService) SubmissionStatus(ctx context.Context, id string) (*models.PaymentSubmission, error) {
	return s.store.Submission(ctx, id)
}

// Submissions lists submissions, optionally filtered by status.
func (s *ApprovalService) Submissions(ctx context.Context, status string) ([]models.PaymentSubmission, error) {
	return s.store.Submissions(ctx, status)
}

// DecideSubmission applies the admin decision. Approval returns the
// newly created account; rejection returns nil. Rejecting an already
// rejected submission is a no-op.
func (s *ApprovalService) DecideSubmission(ctx context.Context, id, decision string) (*models.Account, error) {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, fmt.Errorf("%w: unknown decision %q", models.ErrValidation, decision)
	}

	for attempt := 0; attempt < s.cfg.StoreRetries; attempt++ {
		submission, err := s.store.Submission(ctx, id)
		if err != nil {
			return nil, err
		}

		if submission.Status == models.StatusRejected && decision == models.StatusRejected {
			return nil, nil
		}
		if submission.Status != models.StatusPending {
			return nil, fmt.Errorf("%w: submission already %s", models.ErrInvalidState, submission.Status)
		}

		// Flip the submission first. The CAS makes it the exactly-once
		// consumption point: a raced duplicate decision loses here.
		submission.Status = decision
		err = s.store.UpdateSubmission(ctx, submission)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if decision == models.StatusRejected {
			return nil, nil
		}
		return s.activate(ctx, submission)
	}
	return nil, models.ErrConflict
}

// activate creates the approved account seeded with the fixed
// investment and initial bonus, then pays the referrer if one exists.
func (s *ApprovalService) activate(ctx context.Context, submission *models.PaymentSubmission) (*models.Account, error) {
	now := time.Now()
	code, err := s.generateReferralCode(ctx, submission.HolderName)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:               uuid.NewString(),
		Name:             submission.HolderName,
		Phone:            submission.Phone,
		Username:         submission.Username,
		PasswordHash:     submission.PasswordHash,
		Status:           models.StatusApproved,
		InvestmentTotal:  s.cfg.FixedInvestment,
		EarningTotal:     s.cfg.InitialBonus,
		ReferralCode:     code,
		ReferredByCode:   submission.ReferralCode,
		Referrals:        []string{},
		ReferralsGranted: []string{},
		ApplicationAt:    submission.SubmittedAt,
		ApprovalAt:       &now,
		LastAccrualAt:    &now,
		EarningsHistory: []models.EarningsRecord{{
			Date:        now,
			Amount:      s.cfg.InitialBonus,
			Description: "Initial investment bonus",
		}},
	}
	account.Reconcile()

	if err := s.store.InsertAccount(ctx, account); err != nil {
		return nil, err
	}

	if submission.ReferralCode != "" {
		referrer, err := s.store.AccountByReferralCode(ctx, submission.ReferralCode)
		switch {
		case errors.Is(err, models.ErrNotFound):
			// Invalid or expired code; the referral is dropped silently.
		case err != nil:
			return nil, err
		default:
			if err := s.referrals.Grant(ctx, referrer.ID, account.ID, account.Name); err != nil {
				return nil, err
			}
		}
	}

	log.Printf("submission %s approved, account %s activated", submission.ID, account.ID)
	return account, nil
}

// generateReferralCode builds a short human-readable code from the
// holder's first name plus random digits, retrying until unused.
func (s *ApprovalService) generateReferralCode(ctx context.Context, name string) (string, error) {
	prefix := "user"
	if fields := strings.Fields(strings.ToLower(name)); len(fields) > 0 {
		prefix = fields[0]
	}

	for attempt := 0; attempt < 10; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(900))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%s%d", prefix, 100+n.Int64())
		_, err = s.store.AccountByReferralCode(ctx, code)
		if errors.Is(err, models.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	// Name-based codes exhausted; fall back to a random suffix.
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8]), nil
}
