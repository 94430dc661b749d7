package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/styloinvest/backend/internal/models"
)

// Postgres stores the three record collections in Postgres. Nested
// fields live in JSONB columns; concurrent writers are fenced by a
// version column checked on every update.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the tables if they are missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			investment_total BIGINT NOT NULL DEFAULT 0,
			earning_total BIGINT NOT NULL DEFAULT 0,
			total_withdrawals BIGINT NOT NULL DEFAULT 0,
			current_balance BIGINT NOT NULL DEFAULT 0,
			referral_code TEXT NOT NULL DEFAULT '',
			referred_by_code TEXT NOT NULL DEFAULT '',
			referrals JSONB NOT NULL DEFAULT '[]',
			referrals_granted JSONB NOT NULL DEFAULT '[]',
			withdrawal_enabled BOOLEAN,
			pending_notification TEXT NOT NULL DEFAULT '',
			application_at TIMESTAMPTZ NOT NULL,
			approval_at TIMESTAMPTZ,
			last_accrual_at TIMESTAMPTZ,
			earnings_history JSONB NOT NULL DEFAULT '[]',
			withdrawal_info JSONB,
			version INT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS accounts_referral_code_idx
			ON accounts (referral_code) WHERE referral_code <> ''`,
		`CREATE TABLE IF NOT EXISTS payment_submissions (
			id TEXT PRIMARY KEY,
			holder_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			username TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			platform TEXT NOT NULL,
			screenshot_ref TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL,
			referral_code TEXT NOT NULL DEFAULT '',
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS withdrawal_requests (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			holder_name TEXT NOT NULL,
			amount BIGINT NOT NULL,
			status TEXT NOT NULL,
			requested_at TIMESTAMPTZ NOT NULL,
			payout_snapshot JSONB NOT NULL,
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS withdrawal_requests_account_idx
			ON withdrawal_requests (account_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

const accountColumns = `id, name, phone, username, password_hash, status,
	investment_total, earning_total, total_withdrawals, current_balance,
	referral_code, referred_by_code, referrals, referrals_granted,
	withdrawal_enabled, pending_notification, application_at, approval_at,
	last_accrual_at, earnings_history, withdrawal_info, version, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                 models.Account
		referrals         []byte
		granted           []byte
		history           []byte
		payout            []byte
		withdrawalEnabled sql.NullBool
		approvalAt        sql.NullTime
		lastAccrualAt     sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.Username, &a.PasswordHash, &a.Status,
		&a.InvestmentTotal, &a.EarningTotal, &a.TotalWithdrawals, &a.CurrentBalance,
		&a.ReferralCode, &a.ReferredByCode, &referrals, &granted,
		&withdrawalEnabled, &a.PendingNotification, &a.ApplicationAt, &approvalAt,
		&lastAccrualAt, &history, &payout, &a.Version, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(referrals, &a.Referrals); err != nil {
		return nil, fmt.Errorf("decoding referrals: %w", err)
	}
	if err := json.Unmarshal(granted, &a.ReferralsGranted); err != nil {
		return nil, fmt.Errorf("decoding referrals_granted: %w", err)
	}
	if err := json.Unmarshal(history, &a.EarningsHistory); err != nil {
		return nil, fmt.Errorf("decoding earnings_history: %w", err)
	}
	if len(payout) > 0 {
		a.WithdrawalInfo = &models.PayoutInfo{}
		if err := json.Unmarshal(payout, a.WithdrawalInfo); err != nil {
			return nil, fmt.Errorf("decoding withdrawal_info: %w", err)
		}
	}
	if withdrawalEnabled.Valid {
		a.WithdrawalEnabled = &withdrawalEnabled.Bool
	}
	if approvalAt.Valid {
		a.ApprovalAt = &approvalAt.Time
	}
	if lastAccrualAt.Valid {
		a.LastAccrualAt = &lastAccrualAt.Time
	}
	return &a, nil
}

func accountArgs(a *models.Account) ([]any, error) {
	referrals, err := json.Marshal(orEmpty(a.Referrals))
	if err != nil {
		return nil, err
	}
	granted, err := json.Marshal(orEmpty(a.ReferralsGranted))
	if err != nil {
		return nil, err
	}
	history, err := json.Marshal(a.EarningsHistory)
	if err != nil {
		return nil, err
	}
	var payout any
	if a.WithdrawalInfo != nil {
		data, err := json.Marshal(a.WithdrawalInfo)
		if err != nil {
			return nil, err
		}
		payout = data
	}
	var enabled any
	if a.WithdrawalEnabled != nil {
		enabled = *a.WithdrawalEnabled
	}
	var approvalAt, lastAccrualAt any
	if a.ApprovalAt != nil {
		approvalAt = *a.ApprovalAt
	}
	if a.LastAccrualAt != nil {
		lastAccrualAt = *a.LastAccrualAt
	}
	return []any{a.ID, a.Name, a.Phone, a.Username, a.PasswordHash, a.Status,
		a.InvestmentTotal, a.EarningTotal, a.TotalWithdrawals, a.CurrentBalance,
		a.ReferralCode, a.ReferredByCode, referrals, granted,
		enabled, a.PendingNotification, a.ApplicationAt, approvalAt,
		lastAccrualAt, history, payout}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Postgres) Account(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *Postgres) AccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE referral_code = $1 AND referral_code <> ''`, code)
	return scanAccount(row)
}

func (s *Postgres) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

func (s *Postgres) Accounts(ctx context.Context, status string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY application_at`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Postgres) InsertAccount(ctx context.Context, account *models.Account) error {
	account.Version = 1
	account.UpdatedAt = time.Now()
	args, err := accountArgs(account)
	if err != nil {
		return err
	}
	args = append(args, account.Version, account.UpdatedAt)
	_, err = s.db.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		args...)
	return err
}

func (s *Postgres) UpdateAccount(ctx context.Context, account *models.Account) error {
	args, err := accountArgs(account)
	if err != nil {
		return err
	}
	now := time.Now()
	args = append(args, now, account.Version)
	result, err := s.db.ExecContext(ctx, `UPDATE accounts SET
		name = $2, phone = $3, username = $4, password_hash = $5, status = $6,
		investment_total = $7, earning_total = $8, total_withdrawals = $9, current_balance = $10,
		referral_code = $11, referred_by_code = $12, referrals = $13, referrals_granted = $14,
		withdrawal_enabled = $15, pending_notification = $16, application_at = $17, approval_at = $18,
		last_accrual_at = $19, earnings_history = $20, withdrawal_info = $21,
		updated_at = $22, version = version + 1
		WHERE id = $1 AND version = $23`, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConflict
	}
	account.Version++
	account.UpdatedAt = now
	return nil
}

func (s *Postgres) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

const submissionColumns = `id, holder_name, phone, username, password_hash,
	platform, screenshot_ref, status, submitted_at, referral_code, version`

func scanSubmission(row rowScanner) (*models.PaymentSubmission, error) {
	var sub models.PaymentSubmission
	err := row.Scan(&sub.ID, &sub.HolderName, &sub.Phone, &sub.Username, &sub.PasswordHash,
		&sub.Platform, &sub.ScreenshotRef, &sub.Status, &sub.SubmittedAt, &sub.ReferralCode, &sub.Version)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Postgres) Submission(ctx context.Context, id string) (*models.PaymentSubmission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM payment_submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

func (s *Postgres) Submissions(ctx context.Context, status string) ([]models.PaymentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM payment_submissions`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PaymentSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (s *Postgres) InsertSubmission(ctx context.Context, submission *models.PaymentSubmission) error {
	submission.Version = 1
	_, err := s.db.ExecContext(ctx, `INSERT INTO payment_submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		submission.ID, submission.HolderName, submission.Phone, submission.Username,
		submission.PasswordHash, submission.Platform, submission.ScreenshotRef,
		submission.Status, submission.SubmittedAt, submission.ReferralCode, submission.Version)
	return err
}

func (s *Postgres) UpdateSubmission(ctx context.Context, submission *models.PaymentSubmission) error {
	result, err := s.db.ExecContext(ctx, `UPDATE payment_submissions
		SET status = $2, version = version + 1
		WHERE id = $1 AND version = $3`,
		submission.ID, submission.Status, submission.Version)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConflict
	}
	submission.Version++
	return nil
}

const withdrawalColumns = `id, account_id, holder_name, amount, status,
	requested_at, payout_snapshot, version`

func scanWithdrawal(row rowScanner) (*models.WithdrawalRequest, error) {
	var (
		w      models.WithdrawalRequest
		payout []byte
	)
	err := row.Scan(&w.ID, &w.AccountID, &w.HolderName, &w.Amount, &w.Status,
		&w.RequestedAt, &payout, &w.Version)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payout, &w.PayoutSnapshot); err != nil {
		return nil, fmt.Errorf("decoding payout_snapshot: %w", err)
	}
	return &w, nil
}

func (s *Postgres) Withdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id)
	return scanWithdrawal(row)
}

func (s *Postgres) Withdrawals(ctx context.Context, accountID string) ([]models.WithdrawalRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+withdrawalColumns+`
		FROM withdrawal_requests WHERE account_id = $1 ORDER BY requested_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (s *Postgres) WithdrawalsByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY requested_at`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func collectWithdrawals(rows *sql.Rows) ([]models.WithdrawalRequest, error) {
	var out []models.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *Postgres) InsertWithdrawal(ctx context.Context, request *models.WithdrawalRequest) error {
	payout, err := json.Marshal(request.PayoutSnapshot)
	if err != nil {
		return err
	}
	request.Version = 1
	_, err = s.db.ExecContext(ctx, `INSERT INTO withdrawal_requests (`+withdrawalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		request.ID, request.AccountID, request.HolderName, request.Amount,
		request.Status, request.RequestedAt, payout, request.Version)
	return err
}

func (s *Postgres) UpdateWithdrawal(ctx context.Context, request *models.WithdrawalRequest) error {
	result, err := s.db.ExecContext(ctx, `UPDATE withdrawal_requests
		SET status = $2, version = version + 1
		WHERE id = $1 AND version = $3`,
		request.ID, request.Status, request.Version)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrConflict
	}
	request.Version++
	return nil
}
