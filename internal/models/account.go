package models

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// EarningsRecord is one entry in an account's earnings history.
type EarningsRecord struct {
	Date        time.Time `json:"date"`
	Amount      int64     `json:"amount"` // PKR, whole rupees
	Description string    `json:"description"`
}

// PayoutInfo is the destination for withdrawal payouts.
type PayoutInfo struct {
	Platform      string `json:"platform" validate:"required,oneof=easypaisa jazzcash bank"`
	AccountNumber string `json:"accountNumber" validate:"required,min=5,max=34"`
	HolderName    string `json:"holderName" validate:"required,max=100"`
}

// Account represents one investor, pending or approved.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Status       string `json:"status"`

	InvestmentTotal  int64 `json:"investmentTotal"`
	EarningTotal     int64 `json:"earningTotal"`
	TotalWithdrawals int64 `json:"totalWithdrawals"`
	CurrentBalance   int64 `json:"currentBalance"`

	ReferralCode     string   `json:"referralCode"`
	ReferredByCode   string   `json:"referredByCode,omitempty"`
	Referrals        []string `json:"referrals"`
	ReferralsGranted []string `json:"referralsGranted"`

	// Admin override. nil means no override: the referral-count rule
	// decides eligibility. true always allows, false always blocks.
	WithdrawalEnabled *bool `json:"withdrawalEnabled,omitempty"`

	// One-shot flag set when a referral bonus lands, cleared by the
	// first dashboard read. Holds the referred user's name.
	PendingNotification string `json:"pendingNotification,omitempty"`

	ApplicationAt time.Time  `json:"applicationAt"`
	ApprovalAt    *time.Time `json:"approvalAt,omitempty"`
	LastAccrualAt *time.Time `json:"lastAccrualAt,omitempty"`

	EarningsHistory []EarningsRecord `json:"earningsHistory"`
	WithdrawalInfo  *PayoutInfo      `json:"withdrawalInfo,omitempty"`

	Version   int       `json:"version"` // for optimistic locking
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reconcile recomputes CurrentBalance from the three totals. Every
// mutation path must call it before persisting.
func (a *Account) Reconcile() {
	a.CurrentBalance = a.InvestmentTotal + a.EarningTotal - a.TotalWithdrawals
}

// HasGranted reports whether a referral bonus was already paid for the
// given referred account.
func (a *Account) HasGranted(referredID string) bool {
	for _, id := range a.ReferralsGranted {
		if id == referredID {
			return true
		}
	}
	return false
}
