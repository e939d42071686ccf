package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryRecordStore is an in-memory implementation of interfaces.RecordStore.
// Records are kept in insertion order; reads return copies so callers can't
// modify internal state. When a snapshot path is set, Persist writes the
// whole state to that file.
type MemoryRecordStore struct {
	mu sync.Mutex

	customers     map[string]*models.Customer
	customerOrder []string
	accounts      map[string]*models.Account
	accountOrder  []string
	transactions  []models.Transaction

	snapshotPath string
	persists     int
}

// NewMemoryRecordStore creates an empty store. An empty snapshotPath keeps
// everything in memory only.
func NewMemoryRecordStore(snapshotPath string) *MemoryRecordStore {
	return &MemoryRecordStore{
		customers:    make(map[string]*models.Customer),
		accounts:     make(map[string]*models.Account),
		transactions: make([]models.Transaction, 0),
		snapshotPath: snapshotPath,
	}
}

// AddCustomer inserts or replaces a customer. Customer creation belongs to
// the customer-facing system; the admin core never calls this.
func (m *MemoryRecordStore) AddCustomer(c models.Customer) error {
	if c.ID == "" {
		return models.Validationf("customer id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.customers[c.ID]; !exists {
		m.customerOrder = append(m.customerOrder, c.ID)
	}
	m.customers[c.ID] = &c
	return nil
}

// AddAccount inserts or replaces an account. The owning customer must exist.
func (m *MemoryRecordStore) AddAccount(a models.Account) error {
	if a.ID == "" {
		return models.Validationf("account id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customers[a.CustomerID]; !ok {
		return fmt.Errorf("account %s owner %s: %w", a.ID, a.CustomerID, models.ErrCustomerNotFound)
	}
	if a.Status == "" {
		a.Status = models.AccountStatusActive
	}
	if _, exists := m.accounts[a.ID]; !exists {
		m.accountOrder = append(m.accountOrder, a.ID)
	}
	cp := a.Clone()
	m.accounts[a.ID] = &cp
	return nil
}

func (m *MemoryRecordStore) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[id]
	if !ok {
		return models.Customer{}, fmt.Errorf("%s: %w", id, models.ErrCustomerNotFound)
	}
	return *c, nil
}

func (m *MemoryRecordStore) GetAccount(ctx context.Context, id string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, fmt.Errorf("%s: %w", id, models.ErrAccountNotFound)
	}
	return a.Clone(), nil
}

func (m *MemoryRecordStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Customer, 0, len(m.customerOrder))
	for _, id := range m.customerOrder {
		out = append(out, *m.customers[id])
	}
	return out, nil
}

func (m *MemoryRecordStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Account, 0, len(m.accountOrder))
	for _, id := range m.accountOrder {
		out = append(out, m.accounts[id].Clone())
	}
	return out, nil
}

func (m *MemoryRecordStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.Transaction, len(m.transactions))
	copy(copied, m.transactions)
	return copied, nil
}

func (m *MemoryRecordStore) SetAccountStatus(ctx context.Context, id string, status models.AccountStatus, frozenAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, models.ErrAccountNotFound)
	}
	a.Status = status
	if frozenAt != nil {
		t := *frozenAt
		a.FrozenAt = &t
	} else {
		a.FrozenAt = nil
	}
	return nil
}

func (m *MemoryRecordStore) SetCustomerStatus(ctx context.Context, id string, status models.CustomerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, models.ErrCustomerNotFound)
	}
	c.Status = status
	return nil
}

func (m *MemoryRecordStore) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[tx.AccountID]; !ok {
		return fmt.Errorf("transaction %s: %s: %w", tx.ID, tx.AccountID, models.ErrAccountNotFound)
	}
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *MemoryRecordStore) ApplyAdjustment(ctx context.Context, tx models.Transaction, newBalance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[tx.AccountID]
	if !ok {
		return fmt.Errorf("transaction %s: %s: %w", tx.ID, tx.AccountID, models.ErrAccountNotFound)
	}
	m.transactions = append(m.transactions, tx)
	a.Balance = newBalance
	return nil
}

// Persist writes a snapshot when a snapshot path is configured.
func (m *MemoryRecordStore) Persist(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persists++
	if m.snapshotPath == "" {
		return nil
	}
	return SaveSnapshot(m.snapshotPath, m.snapshotLocked())
}

// PersistCount reports how many times Persist has been called.
func (m *MemoryRecordStore) PersistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persists
}

// Compile-time check: ensure MemoryRecordStore implements RecordStore interface
var _ interfaces.RecordStore = (*MemoryRecordStore)(nil)
