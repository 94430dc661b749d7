package models

import "time"

// PaymentSubmission is one proof-of-payment application. It is created
// by the intake form and consumed exactly once by the approval flow.
type PaymentSubmission struct {
	ID            string    `json:"id"`
	HolderName    string    `json:"holderName"`
	Phone         string    `json:"phone"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Platform      string    `json:"platform"`
	ScreenshotRef string    `json:"screenshotRef"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submittedAt"`
	ReferralCode  string    `json:"referralCode,omitempty"` // the referrer's code
	Version       int       `json:"version"`
}
