package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/styloinvest/backend/internal/services"
)

// AdminHandler serves the admin console: approvals, withdrawal
// decisions and manual account corrections.
type AdminHandler struct {
	approval    *services.ApprovalService
	accounts    *services.AccountService
	withdrawals *services.WithdrawalService
}

func NewAdminHandler(approval *services.ApprovalService, accounts *services.AccountService, withdrawals *services.WithdrawalService) *AdminHandler {
	return &AdminHandler{approval: approval, accounts: accounts, withdrawals: withdrawals}
}

// ListSubmissions returns payment submissions, filterable by status.
// @Summary List payment submissions
// @Tags admin
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.approval.Submissions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

// DecideSubmission approves or rejects a pending submission.
// @Summary Decide a payment submission
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Router /admin/submissions/{id}/decision [post]
func (h *AdminHandler) DecideSubmission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision string `json:"decision"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.approval.DecideSubmission(r.Context(), chi.URLParam(r, "id"), req.Decision)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	if account == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": req.Decision})
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ListAccounts returns accounts, filterable by status.
// @Summary List accounts
// @Tags admin
// @Produce json
// @Router /admin/accounts [get]
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.Accounts(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// GetAccount returns one account.
// @Summary Get account
// @Tags admin
// @Produce json
// @Param id path string true "Account id"
// @Router /admin/accounts/{id} [get]
func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Account(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// DeleteAccount removes an account entirely.
// @Summary Delete account
// @Tags admin
// @Param id path string true "Account id"
// @Router /admin/accounts/{id} [delete]
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AdjustBalance applies a manual correction to one balance field.
// @Summary Adjust account balance
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Router /admin/accounts/{id}/adjust-balance [post]
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Delta int64  `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.AdjustBalance(r.Context(), chi.URLParam(r, "id"), req.Field, req.Delta)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// SetWithdrawalOverride sets or clears the eligibility override.
// Passing "enabled": null removes the override.
// @Summary Set withdrawal override
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Router /admin/accounts/{id}/withdrawal-override [put]
func (h *AdminHandler) SetWithdrawalOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.SetWithdrawalOverride(r.Context(), chi.URLParam(r, "id"), req.Enabled)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ListPendingWithdrawals returns the queue awaiting a decision.
// @Summary List pending withdrawals
// @Tags admin
// @Produce json
// @Router /admin/withdrawals [get]
func (h *AdminHandler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	pending, err := h.withdrawals.Pending(r.Context())
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// DecideWithdrawal approves or rejects a pending withdrawal request.
// @Summary Decide a withdrawal request
// @Tags admin
// @Accept json
// @Param id path string true "Request id"
// @Router /admin/withdrawals/{id}/decision [post]
func (h *AdminHandler) DecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision string `json:"decision"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.withdrawals.Decide(r.Context(), chi.URLParam(r, "id"), req.Decision); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Decision})
}

// Statistics returns the admin dashboard counters.
// @Summary Portal statistics
// @Tags admin
// @Produce json
// @Success 200 {object} services.Statistics
// @Router /admin/statistics [get]
func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.Statistics(r.Context())
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
