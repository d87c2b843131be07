package services

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/referearn/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory store implementing every repository interface the services use.
// Each method is atomic under mu, which mirrors the single-statement
// atomicity the SQL repositories get from PostgreSQL.
// ---------------------------------------------------------------------------

// noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called.
type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

type memStore struct {
	mu          sync.Mutex
	accounts    map[string]*models.Account
	completed   map[string]map[string]bool
	tasks       map[string]*models.Task
	settings    *models.Settings
	withdrawals []*models.WithdrawalRequest
	entries     []*models.PointsEntry

	// insertErr, when set, is returned once by the next CreateIfAbsent.
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  make(map[string]*models.Account),
		completed: make(map[string]map[string]bool),
		tasks:     make(map[string]*models.Task),
	}
}

func (m *memStore) stores() Stores {
	return Stores{
		Pool:        m,
		Accounts:    m,
		Tasks:       memTasks{m},
		Settings:    memSettings{m},
		Withdrawals: memWithdrawals{m},
		Points:      memPoints{m},
	}
}

func (m *memStore) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

// --- AccountStore ---

func (m *memStore) CreateIfAbsent(_ context.Context, _ pgx.Tx, a *models.Account) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.insertErr; err != nil {
		m.insertErr = nil
		return false, err
	}
	if _, ok := m.accounts[a.ID]; ok {
		return false, nil
	}
	cp := *a
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.accounts[a.ID] = &cp
	return true, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetByReferralCode(_ context.Context, _ pgx.Tx, code string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ReferralCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) ReferralCodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) AddPoints(_ context.Context, _ pgx.Tx, id string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	a.Balance += amount
	return a.Balance, nil
}

func (m *memStore) DeductPoints(_ context.Context, _ pgx.Tx, id string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.Balance < amount {
		return 0, pgx.ErrNoRows
	}
	a.Balance -= amount
	return a.Balance, nil
}

func (m *memStore) AddCompletedTask(_ context.Context, _ pgx.Tx, accountID, taskID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.completed[accountID]
	if set == nil {
		set = make(map[string]bool)
		m.completed[accountID] = set
	}
	if set[taskID] {
		return false, nil
	}
	set[taskID] = true
	return true, nil
}

func (m *memStore) ListCompletedTaskIDs(_ context.Context, accountID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for id := range m.completed[accountID] {
		out = append(out, id)
	}
	return out, nil
}

// --- TaskStore ---

type memTasks struct{ m *memStore }

func (s memTasks) Upsert(_ context.Context, t *models.Task) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *t
	s.m.tasks[t.ID] = &cp
	return nil
}

func (s memTasks) GetByID(_ context.Context, id string) (*models.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (s memTasks) List(context.Context) ([]*models.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*models.Task
	for _, t := range s.m.tasks {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// --- SettingsStore ---

type memSettings struct{ m *memStore }

func (s memSettings) Get(context.Context) (*models.Settings, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.settings == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *s.m.settings
	return &cp, nil
}

func (s memSettings) Put(_ context.Context, st *models.Settings) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *st
	s.m.settings = &cp
	return nil
}

// --- WithdrawalStore ---

type memWithdrawals struct{ m *memStore }

func (s memWithdrawals) CreateTx(_ context.Context, _ pgx.Tx, w *models.WithdrawalRequest) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w.CreatedAt = time.Now()
	cp := *w
	s.m.withdrawals = append(s.m.withdrawals, &cp)
	return nil
}

func (s memWithdrawals) ListByAccountID(_ context.Context, accountID string) ([]*models.WithdrawalRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []*models.WithdrawalRequest{}
	for _, w := range s.m.withdrawals {
		if w.AccountID == accountID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- PointsStore ---

type memPoints struct{ m *memStore }

func (s memPoints) CreateTx(_ context.Context, _ pgx.Tx, e *models.PointsEntry) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *e
	s.m.entries = append(s.m.entries, &cp)
	return nil
}

func (s memPoints) ListByAccountID(_ context.Context, accountID string) ([]*models.PointsEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*models.PointsEntry
	for i := len(s.m.entries) - 1; i >= 0; i-- {
		if e := s.m.entries[i]; e.AccountID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (m *memStore) balance(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return -1
	}
	return a.Balance
}

func (m *memStore) ledgerSum(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.entries {
		if e.AccountID == id {
			sum += e.Signed()
		}
	}
	return sum
}

func (m *memStore) seedAccount(id, code string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[id] = &models.Account{ID: id, ReferralCode: code, Balance: balance}
	if balance > 0 {
		// Seeded balances get a matching entry so ledger sums stay comparable.
		m.entries = append(m.entries, &models.PointsEntry{
			AccountID: id, EntryType: models.PointsEntryTaskReward, Amount: balance, BalanceAfter: balance,
		})
	}
}

type sentMessage struct {
	chatID string
	text   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, chatID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{chatID, text})
	return n.err
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMessage, len(n.sent))
	copy(out, n.sent)
	return out
}
