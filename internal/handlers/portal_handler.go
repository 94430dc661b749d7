package handlers

import (
	"net/http"
	"time"

	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/services"
)

// PortalHandler serves the authenticated investor surface.
type PortalHandler struct {
	accrual     *services.AccrualService
	accounts    *services.AccountService
	referrals   *services.ReferralService
	withdrawals *services.WithdrawalService
	qr          *services.QRService
}

func NewPortalHandler(
	accrual *services.AccrualService,
	accounts *services.AccountService,
	referrals *services.ReferralService,
	withdrawals *services.WithdrawalService,
	qr *services.QRService,
) *PortalHandler {
	return &PortalHandler{
		accrual:     accrual,
		accounts:    accounts,
		referrals:   referrals,
		withdrawals: withdrawals,
		qr:          qr,
	}
}

// Dashboard catches up daily earnings as of now and returns the account
// together with any pending referral notification (cleared by this
// read).
// @Summary Investor dashboard
// @Tags portal
// @Produce json
// @Success 200 {object} models.Account
// @Router /me/dashboard [get]
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	account, err := h.accrual.Accrue(r.Context(), accountID(r), time.Now())
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	notification, err := h.referrals.ConsumeNotification(r.Context(), account.ID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	if notification != "" {
		account.PendingNotification = ""
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":              account,
		"referralNotification": notification,
	})
}

// ListWithdrawals returns the investor's withdrawal history.
// @Summary Withdrawal history
// @Tags portal
// @Produce json
// @Router /me/withdrawals [get]
func (h *PortalHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	history, err := h.withdrawals.History(r.Context(), accountID(r))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// RequestWithdrawal opens a withdrawal request and reserves the amount.
// @Summary Request a withdrawal
// @Tags portal
// @Accept json
// @Produce json
// @Success 201 {object} models.WithdrawalRequest
// @Failure 422 {object} services.ErrorResponse
// @Router /me/withdrawals [post]
func (h *PortalHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.withdrawals.Request(r.Context(), accountID(r), req.Amount)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// SetWithdrawalInfo saves the payout destination.
// @Summary Save withdrawal account details
// @Tags portal
// @Accept json
// @Produce json
// @Router /me/withdrawal-info [put]
func (h *PortalHandler) SetWithdrawalInfo(w http.ResponseWriter, r *http.Request) {
	var info models.PayoutInfo
	if !decodeJSON(w, r, &info) {
		return
	}

	account, err := h.accounts.SetWithdrawalInfo(r.Context(), accountID(r), info)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ReferralQR renders the investor's referral link as a QR image.
// @Summary Referral link QR code
// @Tags portal
// @Produce json
// @Router /me/referral-qr [get]
func (h *PortalHandler) ReferralQR(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Account(r.Context(), accountID(r))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	link, image, err := h.qr.ReferralQR(account)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"link":    link,
		"qrImage": image,
	})
}
