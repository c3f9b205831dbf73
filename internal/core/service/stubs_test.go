package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

// fakeCache is an in-memory ExpiringCache. TTLs are recorded but only honoured
// for the TTL query; nothing actually expires during a test run.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

type errCacheDown struct{}

func (errCacheDown) Error() string { return "cache down" }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", false, errCacheDown{}
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeCache) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown{}
	}
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errCacheDown{}
	}
	n := int64(0)
	for _, r := range f.values[key] {
		n = n*10 + int64(r-'0')
	}
	n++
	f.values[key] = formatInt(n)
	if _, ok := f.ttls[key]; !ok {
		f.ttls[key] = ttl
	}
	return n, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errCacheDown{}
	}
	delete(f.values, key)
	delete(f.ttls, key)
	return nil
}

func (f *fakeCache) TTL(_ context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errCacheDown{}
	}
	return f.ttls[key], nil
}

func formatInt(n int64) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

// recordingEmitter captures emitted audit events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []ports.AuditEvent
}

func (r *recordingEmitter) Emit(event ports.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) byAction(action string) []ports.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.AuditEvent
	for _, e := range r.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// memUserRepo is an in-memory UserRepository keyed by id and email.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.FirstLogin = false
	return nil
}

func (m *memUserRepo) UpdateRole(_ context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

// memAccountRepo is an in-memory AccountRepository shared with the
// transaction repo so transfers mutate the same balances tests inspect.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (m *memAccountRepo) put(a *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.accounts[a.ID] = &cp
}

func (m *memAccountRepo) balance(id string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].Balance
}

func (m *memAccountRepo) Create(_ context.Context, account *domain.Account) error {
	m.put(account)
	return nil
}

func (m *memAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountRepo) FindByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == accountNumber {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memAccountRepo) ListByOwner(_ context.Context, userID string) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAccountRepo) ListAll(_ context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAccountRepo) NumberExists(_ context.Context, accountNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccountRepo) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Status = status
	return nil
}

// memTransactionRepo mimics the atomic transfer unit against memAccountRepo:
// the guarded debit, the credit and the insert succeed or fail together.
type memTransactionRepo struct {
	mu       sync.Mutex
	accounts *memAccountRepo
	rows     []*domain.Transaction
}

func newMemTransactionRepo(accounts *memAccountRepo) *memTransactionRepo {
	return &memTransactionRepo{accounts: accounts}
}

func (m *memTransactionRepo) Execute(_ context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts.mu.Lock()
	defer m.accounts.mu.Unlock()

	if t.IdempotencyKey != "" {
		for _, row := range m.rows {
			if row.IdempotencyKey == t.IdempotencyKey {
				return domain.ErrDuplicateKey
			}
		}
	}

	sender, ok := m.accounts.accounts[t.SenderAccountID]
	if !ok || sender.Status != domain.AccountActive || sender.Balance.LessThan(t.Amount) {
		return domain.ErrInsufficientBalance
	}
	receiver, ok := m.accounts.accounts[t.ReceiverAccountID]
	if !ok || receiver.Status != domain.AccountActive {
		return domain.ErrAccountNotActive
	}

	sender.Balance = sender.Balance.Sub(t.Amount)
	receiver.Balance = receiver.Balance.Add(t.Amount)
	cp := *t
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memTransactionRepo) FindByTransactionID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TransactionID == transactionID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *memTransactionRepo) List(_ context.Context, filter ports.ListTransactionsFilter) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Transaction
	for _, row := range m.rows {
		if filter.Type != "" && row.Type != filter.Type {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTransactionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
