package models

import "time"

// WithdrawalRequest is one withdrawal attempt. The amount is debited
// from the account balance when the request is created; rejection
// refunds it, approval leaves the debit in place.
type WithdrawalRequest struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	HolderName  string    `json:"holderName"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`

	// Copy of the account's payout info at request time. Editing the
	// account's payout info later does not change it.
	PayoutSnapshot PayoutInfo `json:"payoutSnapshot"`

	Version int `json:"version"`
}
