package store

import (
	"context"

	"github.com/styloinvest/backend/internal/models"
)

// AccountStore persists investor accounts. Update is a compare-and-swap
// on the record's Version and returns models.ErrConflict when the
// stored version no longer matches; callers re-read, re-validate their
// preconditions and retry.
type AccountStore interface {
	Account(ctx context.Context, id string) (*models.Account, error)
	AccountByReferralCode(ctx context.Context, code string) (*models.Account, error)
	AccountByUsername(ctx context.Context, username string) (*models.Account, error)
	Accounts(ctx context.Context, status string) ([]models.Account, error)
	InsertAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id string) error
}

// SubmissionStore persists payment submissions.
type SubmissionStore interface {
	Submission(ctx context.Context, id string) (*models.PaymentSubmission, error)
	Submissions(ctx context.Context, status string) ([]models.PaymentSubmission, error)
	InsertSubmission(ctx context.Context, submission *models.PaymentSubmission) error
	UpdateSubmission(ctx context.Context, submission *models.PaymentSubmission) error
}

// WithdrawalStore persists withdrawal requests.
type WithdrawalStore interface {
	Withdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error)
	Withdrawals(ctx context.Context, accountID string) ([]models.WithdrawalRequest, error)
	WithdrawalsByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error)
	InsertWithdrawal(ctx context.Context, request *models.WithdrawalRequest) error
	UpdateWithdrawal(ctx context.Context, request *models.WithdrawalRequest) error
}

// Store is the full record store backing the portal.
type Store interface {
	AccountStore
	SubmissionStore
	WithdrawalStore
}
