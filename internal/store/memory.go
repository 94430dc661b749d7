package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/styloinvest/backend/internal/models"
)

// Memory is an in-process Store with the same CAS semantics as the
// Postgres store. It backs tests and the STORE_DRIVER=memory dev mode.
type Memory struct {
	mu          sync.Mutex
	accounts    map[string]*models.Account
	submissions map[string]*models.PaymentSubmission
	withdrawals map[string]*models.WithdrawalRequest
}

func NewMemory() *Memory {
	return &Memory{
		accounts:    make(map[string]*models.Account),
		submissions: make(map[string]*models.PaymentSubmission),
		withdrawals: make(map[string]*models.WithdrawalRequest),
	}
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	c.Referrals = append([]string(nil), a.Referrals...)
	c.ReferralsGranted = append([]string(nil), a.ReferralsGranted...)
	c.EarningsHistory = append([]models.EarningsRecord(nil), a.EarningsHistory...)
	if a.WithdrawalEnabled != nil {
		v := *a.WithdrawalEnabled
		c.WithdrawalEnabled = &v
	}
	if a.WithdrawalInfo != nil {
		info := *a.WithdrawalInfo
		c.WithdrawalInfo = &info
	}
	if a.ApprovalAt != nil {
		t := *a.ApprovalAt
		c.ApprovalAt = &t
	}
	if a.LastAccrualAt != nil {
		t := *a.LastAccrualAt
		c.LastAccrualAt = &t
	}
	return &c
}

func (m *Memory) Account(ctx context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (m *Memory) AccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ReferralCode != "" && a.ReferralCode == code {
			return cloneAccount(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) Accounts(ctx context.Context, status string) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Account
	for _, a := range m.accounts {
		if status == "" || a.Status == status {
			out = append(out, *cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationAt.Before(out[j].ApplicationAt) })
	return out, nil
}

func (m *Memory) InsertAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return models.ErrConflict
	}
	account.Version = 1
	account.UpdatedAt = time.Now()
	m.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (m *Memory) UpdateAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.accounts[account.ID]
	if !ok {
		return models.ErrNotFound
	}
	if current.Version != account.Version {
		return models.ErrConflict
	}
	account.Version++
	account.UpdatedAt = time.Now()
	m.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (m *Memory) DeleteAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *Memory) Submission(ctx context.Context, id string) (*models.PaymentSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (m *Memory) Submissions(ctx context.Context, status string) ([]models.PaymentSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentSubmission
	for _, s := range m.submissions {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (m *Memory) InsertSubmission(ctx context.Context, submission *models.PaymentSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[submission.ID]; ok {
		return models.ErrConflict
	}
	submission.Version = 1
	c := *submission
	m.submissions[submission.ID] = &c
	return nil
}

func (m *Memory) UpdateSubmission(ctx context.Context, submission *models.PaymentSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.submissions[submission.ID]
	if !ok {
		return models.ErrNotFound
	}
	if current.Version != submission.Version {
		return models.ErrConflict
	}
	submission.Version++
	c := *submission
	m.submissions[submission.ID] = &c
	return nil
}

func (m *Memory) Withdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *w
	return &c, nil
}

func (m *Memory) Withdrawals(ctx context.Context, accountID string) ([]models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WithdrawalRequest
	for _, w := range m.withdrawals {
		if w.AccountID == accountID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (m *Memory) WithdrawalsByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WithdrawalRequest
	for _, w := range m.withdrawals {
		if status == "" || w.Status == status {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *Memory) InsertWithdrawal(ctx context.Context, request *models.WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.withdrawals[request.ID]; ok {
		return models.ErrConflict
	}
	request.Version = 1
	c := *request
	m.withdrawals[request.ID] = &c
	return nil
}

func (m *Memory) UpdateWithdrawal(ctx context.Context, request *models.WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.withdrawals[request.ID]
	if !ok {
		return models.ErrNotFound
	}
	if current.Version != request.Version {
		return models.ErrConflict
	}
	request.Version++
	c := *request
	m.withdrawals[request.ID] = &c
	return nil
}
