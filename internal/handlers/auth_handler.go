package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/styloinvest/backend/internal/middleware"
	"github.com/styloinvest/backend/internal/services"
)

type AuthHandler struct {
	auth     *services.AuthService
	approval *services.ApprovalService
}

func NewAuthHandler(auth *services.AuthService, approval *services.ApprovalService) *AuthHandler {
	return &AuthHandler{auth: auth, approval: approval}
}

// Register handles the intake form: it records a pending payment
// submission carrying the applicant's credentials.
// @Summary Submit an investment application
// @Tags auth
// @Accept json
// @Produce json
// @Param submission body services.SubmitPaymentRequest true "Application data"
// @Success 201 {object} models.PaymentSubmission
// @Failure 400 {object} services.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	submission, err := h.approval.SubmitPayment(r.Context(), req)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, submission)
}

// Login authenticates an approved investor.
// @Summary Investor login
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	token, account, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		services.SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"account": account,
	})
}

// AdminLogin authenticates the admin console.
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.AdminLogin(req.Password)
	if err != nil {
		services.SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout revokes the presented session token.
// @Summary Logout
// @Tags auth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		services.SendErrorResponse(w, "Logout failed", http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// SubmissionStatus lets pending applicants poll their application.
// @Summary Application status
// @Tags auth
// @Produce json
// @Param id path string true "Submission id"
// @Router /submissions/{id}/status [get]
func (h *AuthHandler) SubmissionStatus(w http.ResponseWriter, r *http.Request) {
	submission, err := h.approval.SubmissionStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     submission.ID,
		"status": submission.Status,
	})
}

// decodeJSON reads a single JSON object with the usual request hygiene.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// accountID pulls the authenticated account id from the context.
func accountID(r *http.Request) string {
	id, _ := r.Context().Value(middleware.AccountIDKey).(string)
	return id
}
