package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
)

func approvalFixture(t *testing.T) (*store.Memory, *ApprovalService) {
	t.Helper()
	st := store.NewMemory()
	referrals := NewReferralService(st, testConfig())
	return st, NewApprovalService(st, referrals, testConfig())
}

func validSubmission() SubmitPaymentRequest {
	return SubmitPaymentRequest{
		HolderName:    "Ali Raza",
		Phone:         "03001234567",
		Username:      "aliraza",
		Password:      "supersecret",
		Platform:      "easypaisa",
		ScreenshotRef: "uploads/proof-1.png",
	}
}

func TestApprovalService_SubmitPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("records a pending submission", func(t *testing.T) {
		st, svc := approvalFixture(t)

		submission, err := svc.SubmitPayment(ctx, validSubmission())
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, submission.Status)
		assert.NotEmpty(t, submission.ID)
		assert.NotEqual(t, "supersecret", submission.PasswordHash)
		assert.Contains(t, submission.PasswordHash, "$")

		stored, err := st.Submission(ctx, submission.ID)
		require.NoError(t, err)
		assert.Equal(t, "aliraza", stored.Username)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		_, svc := approvalFixture(t)

		req := validSubmission()
		req.Platform = "paypal"
		_, err := svc.SubmitPayment(ctx, req)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		st, svc := approvalFixture(t)
		existing := seedApproved(t, st, "acc-1", time.Now())
		existing.Username = "aliraza"
		require.NoError(t, st.UpdateAccount(ctx, existing))

		_, err := svc.SubmitPayment(ctx, validSubmission())
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestApprovalService_DecideSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("approval activates the account with opening balances", func(t *testing.T) {
		st, svc := approvalFixture(t)

		submission, err := svc.SubmitPayment(ctx, validSubmission())
		require.NoError(t, err)

		account, err := svc.DecideSubmission(ctx, submission.ID, models.StatusApproved)
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, models.StatusApproved, account.Status)
		assert.Equal(t, int64(6000), account.InvestmentTotal)
		assert.Equal(t, int64(200), account.EarningTotal)
		assert.Equal(t, int64(6200), account.CurrentBalance)
		assert.True(t, strings.HasPrefix(account.ReferralCode, "ali"))
		require.NotNil(t, account.ApprovalAt)
		require.Len(t, account.EarningsHistory, 1)
		assert.Equal(t, "Initial investment bonus", account.EarningsHistory[0].Description)

		stored, err := st.Submission(ctx, submission.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, stored.Status)

		login, err := st.AccountByUsername(ctx, "aliraza")
		require.NoError(t, err)
		assert.Equal(t, account.ID, login.ID)
	})

	t.Run("approval pays the referrer", func(t *testing.T) {
		st, svc := approvalFixture(t)
		referrer := seedApproved(t, st, "referrer", time.Now())

		req := validSubmission()
		req.ReferralCode = referrer.ReferralCode
		submission, err := svc.SubmitPayment(ctx, req)
		require.NoError(t, err)

		account, err := svc.DecideSubmission(ctx, submission.ID, models.StatusApproved)
		require.NoError(t, err)

		updated, err := st.Account(ctx, "referrer")
		require.NoError(t, err)
		assert.Equal(t, int64(200+200), updated.EarningTotal)
		assert.Equal(t, []string{account.ID}, updated.Referrals)
		assert.Equal(t, "Ali Raza", updated.PendingNotification)
		assert.Equal(t, referrer.ReferralCode, account.ReferredByCode)
	})

	t.Run("unknown referral code is dropped", func(t *testing.T) {
		_, svc := approvalFixture(t)

		req := validSubmission()
		req.ReferralCode = "nosuchcode"
		submission, err := svc.SubmitPayment(ctx, req)
		require.NoError(t, err)

		account, err := svc.DecideSubmission(ctx, submission.ID, models.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, int64(6200), account.CurrentBalance)
	})

	t.Run("rejection returns no account", func(t *testing.T) {
		st, svc := approvalFixture(t)

		submission, err := svc.SubmitPayment(ctx, validSubmission())
		require.NoError(t, err)

		account, err := svc.DecideSubmission(ctx, submission.ID, models.StatusRejected)
		require.NoError(t, err)
		assert.Nil(t, account)

		stored, err := st.Submission(ctx, submission.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, stored.Status)

		// No account was created for the applicant.
		_, err = st.AccountByUsername(ctx, "aliraza")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("repeated rejection is a no-op", func(t *testing.T) {
		_, svc := approvalFixture(t)

		submission, err := svc.SubmitPayment(ctx, validSubmission())
		require.NoError(t, err)

		_, err = svc.DecideSubmission(ctx, submission.ID, models.StatusRejected)
		require.NoError(t, err)
		_, err = svc.DecideSubmission(ctx, submission.ID, models.StatusRejected)
		assert.NoError(t, err)
	})

	t.Run("approving a decided submission fails", func(t *testing.T) {
		_, svc := approvalFixture(t)

		submission, err := svc.SubmitPayment(ctx, validSubmission())
		require.NoError(t, err)

		_, err = svc.DecideSubmission(ctx, submission.ID, models.StatusApproved)
		require.NoError(t, err)

		_, err = svc.DecideSubmission(ctx, submission.ID, models.StatusApproved)
		assert.ErrorIs(t, err, models.ErrInvalidState)

		_, err = svc.DecideSubmission(ctx, submission.ID, models.StatusRejected)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("unknown decision", func(t *testing.T) {
		_, svc := approvalFixture(t)
		_, err := svc.DecideSubmission(ctx, "any", "maybe")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("unknown submission", func(t *testing.T) {
		_, svc := approvalFixture(t)
		_, err := svc.DecideSubmission(ctx, "missing", models.StatusApproved)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestApprovalService_ReferralCodesAreUnique(t *testing.T) {
	ctx := context.Background()
	_, svc := approvalFixture(t)

	seen := make(map[string]bool)
	for i, username := range []string{"aliraza1", "aliraza2", "aliraza3"} {
		req := validSubmission()
		req.Username = username
		req.Phone = req.Phone + string(rune('0'+i))

		submission, err := svc.SubmitPayment(ctx, req)
		require.NoError(t, err)
		account, err := svc.DecideSubmission(ctx, submission.ID, models.StatusApproved)
		require.NoError(t, err)

		assert.False(t, seen[account.ReferralCode], "duplicate referral code %s", account.ReferralCode)
		seen[account.ReferralCode] = true
	}
}
