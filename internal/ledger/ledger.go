package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Ledger keeps account balances and the transaction log in lockstep.
// Every balance change it makes is recorded as a transaction in the same
// step, and every mutation is persisted before returning.
type Ledger struct {
	store interfaces.RecordStore
	muMap map[string]*sync.Mutex // one mutex per account id
	mapMu sync.Mutex             // protects muMap

	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

// WithClock overrides the timestamp source for transactions and freezes.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func NewLedger(store interfaces.RecordStore, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		muMap: make(map[string]*sync.Mutex),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) getAccountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// Record appends a transaction against an existing account. It never
// touches the balance; callers that move money must use Adjust or keep the
// balance in step themselves.
func (l *Ledger) Record(ctx context.Context, accountID string, txType models.TransactionType, amount decimal.Decimal, description string) (models.Transaction, error) {
	mu := l.getAccountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Transaction{}, err
	}

	tx, err := l.newTransaction(account, txType, amount, description)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := l.store.AppendTransaction(ctx, tx); err != nil {
		return models.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	if err := l.store.Persist(ctx); err != nil {
		return models.Transaction{}, fmt.Errorf("persist: %w", err)
	}
	return tx, nil
}

// newTransaction validates and builds a transaction without writing it.
func (l *Ledger) newTransaction(account models.Account, txType models.TransactionType, amount decimal.Decimal, description string) (models.Transaction, error) {
	if !txType.Valid() {
		return models.Transaction{}, models.Validationf("unknown transaction type %q", txType)
	}
	if amount.IsNegative() {
		return models.Transaction{}, models.Validationf("amount must be non-negative, got %s", amount)
	}

	return models.Transaction{
		ID:          l.newID(),
		AccountID:   account.ID,
		CustomerID:  account.CustomerID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Timestamp:   l.now(),
	}, nil
}

// Adjust applies a signed delta to an account balance on behalf of actor and
// records it as an admin adjustment. A positive delta is a credit; zero and
// negative deltas are debits of |delta|. Frozen accounts can be adjusted.
// Nothing is written unless every precondition holds.
func (l *Ledger) Adjust(ctx context.Context, accountID string, delta decimal.Decimal, reason, actor string) (models.Adjustment, error) {
	mu := l.getAccountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Adjustment{}, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Adjustment{}, models.Validationf("a reason must be provided for balance adjustments")
	}

	txType := models.TransactionAdminAdjustmentDebit
	if delta.IsPositive() {
		txType = models.TransactionAdminAdjustmentCredit
	}
	description := fmt.Sprintf("Admin adjustment: %s by %s", reason, actor)

	tx, err := l.newTransaction(account, txType, delta.Abs(), description)
	if err != nil {
		return models.Adjustment{}, err
	}

	newBalance := account.Balance.Add(delta)

	if err := l.store.ApplyAdjustment(ctx, tx, newBalance); err != nil {
		return models.Adjustment{}, fmt.Errorf("apply adjustment: %w", err)
	}
	if err := l.store.Persist(ctx); err != nil {
		return models.Adjustment{}, fmt.Errorf("persist: %w", err)
	}

	return models.Adjustment{
		AccountID:       account.ID,
		PreviousBalance: account.Balance,
		NewBalance:      newBalance,
		Transaction:     tx,
	}, nil
}

// Reconcile compares the stored balance of an account with the net of its
// recorded transactions.
func (l *Ledger) Reconcile(ctx context.Context, accountID string) (models.Reconciliation, error) {
	mu := l.getAccountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Reconciliation{}, err
	}
	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		return models.Reconciliation{}, err
	}

	ledgerBalance := decimal.Zero
	count := 0
	for _, tx := range txs {
		if tx.AccountID != accountID {
			continue
		}
		ledgerBalance = ledgerBalance.Add(tx.Entry().Amount)
		count++
	}

	return models.Reconciliation{
		AccountID:     accountID,
		StoredBalance: account.Balance,
		LedgerBalance: ledgerBalance,
		Difference:    account.Balance.Sub(ledgerBalance),
		EntryCount:    count,
	}, nil
}
