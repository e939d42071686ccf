package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/storage/memory"
	"github.com/shopspring/decimal"
)

// writeCountingStore wraps the memory store and counts every write call.
type writeCountingStore struct {
	*memory.MemoryRecordStore
	appends, adjustments, statusWrites, customerWrites, persists int

	// failAdjust, when set, fails ApplyAdjustment before it reaches the store.
	failAdjust error
}

func (s *writeCountingStore) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	s.appends++
	return s.MemoryRecordStore.AppendTransaction(ctx, tx)
}

func (s *writeCountingStore) ApplyAdjustment(ctx context.Context, tx models.Transaction, newBalance decimal.Decimal) error {
	if s.failAdjust != nil {
		return s.failAdjust
	}
	s.adjustments++
	return s.MemoryRecordStore.ApplyAdjustment(ctx, tx, newBalance)
}

func (s *writeCountingStore) SetAccountStatus(ctx context.Context, id string, status models.AccountStatus, frozenAt *time.Time) error {
	s.statusWrites++
	return s.MemoryRecordStore.SetAccountStatus(ctx, id, status, frozenAt)
}

func (s *writeCountingStore) SetCustomerStatus(ctx context.Context, id string, status models.CustomerStatus) error {
	s.customerWrites++
	return s.MemoryRecordStore.SetCustomerStatus(ctx, id, status)
}

func (s *writeCountingStore) Persist(ctx context.Context) error {
	s.persists++
	return s.MemoryRecordStore.Persist(ctx)
}

func (s *writeCountingStore) writes() int {
	return s.appends + s.adjustments + s.statusWrites + s.customerWrites + s.persists
}

func stepClock() func() time.Time {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newFixture(t *testing.T, balance int64) (*Ledger, *writeCountingStore) {
	t.Helper()
	mem := memory.NewMemoryRecordStore("")
	if err := mem.AddCustomer(models.Customer{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := mem.AddAccount(models.Account{ID: "a1", CustomerID: "c1", Type: "checking", Balance: decimal.NewFromInt(balance)}); err != nil {
		t.Fatal(err)
	}
	store := &writeCountingStore{MemoryRecordStore: mem}
	var seq atomic.Int64
	l := NewLedger(store, WithClock(stepClock()), WithIDGenerator(func() string {
		return fmt.Sprintf("tx-%d", seq.Add(1))
	}))
	return l, store
}

func balanceOf(t *testing.T, store *writeCountingStore, id string) decimal.Decimal {
	t.Helper()
	a, err := store.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAccount(%s) err=%v", id, err)
	}
	return a.Balance
}

func TestAdjustCreditThenDebit(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 100)

	adj, err := l.Adjust(ctx, "a1", decimal.NewFromFloat(50.0), "correction", "admin@kingstonbank.com")
	if err != nil {
		t.Fatal(err)
	}
	if !adj.NewBalance.Equal(decimal.NewFromInt(150)) || !adj.PreviousBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected adjustment %+v", adj)
	}
	if got := balanceOf(t, store, "a1"); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("balance=%s want 150", got)
	}
	if adj.Transaction.Type != models.TransactionAdminAdjustmentCredit || !adj.Transaction.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected credit transaction %+v", adj.Transaction)
	}

	adj, err = l.Adjust(ctx, "a1", decimal.NewFromFloat(-30.0), "fee", "admin@kingstonbank.com")
	if err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, store, "a1"); !got.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("balance=%s want 120", got)
	}
	if adj.Transaction.Type != models.TransactionAdminAdjustmentDebit || !adj.Transaction.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected debit transaction %+v", adj.Transaction)
	}

	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 2 {
		t.Fatalf("transactions=%d want 2", len(txs))
	}
	if txs[0].CustomerID != "c1" || txs[0].AccountID != "a1" {
		t.Fatalf("transaction references not set: %+v", txs[0])
	}
	if !strings.Contains(txs[1].Description, "fee") || !strings.Contains(txs[1].Description, "admin@kingstonbank.com") {
		t.Fatalf("description should embed reason and admin: %q", txs[1].Description)
	}
}

func TestAdjustRejectsBlankReasonWithoutWrites(t *testing.T) {
	l, store := newFixture(t, 100)

	for _, reason := range []string{"", "   "} {
		_, err := l.Adjust(context.Background(), "a1", decimal.NewFromInt(10), reason, "admin")
		if !errors.Is(err, models.ErrValidation) {
			t.Fatalf("reason=%q want ErrValidation, got %v", reason, err)
		}
	}
	if store.writes() != 0 {
		t.Fatalf("failed adjustment wrote to the store %d times", store.writes())
	}
	if got := balanceOf(t, store, "a1"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance=%s want 100", got)
	}
}

func TestAdjustUnknownAccount(t *testing.T) {
	l, store := newFixture(t, 0)

	_, err := l.Adjust(context.Background(), "missing", decimal.NewFromInt(10), "correction", "admin")
	if !errors.Is(err, models.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
	if store.writes() != 0 {
		t.Fatalf("failed adjustment wrote to the store %d times", store.writes())
	}
}

func TestAdjustZeroDeltaRecordsDebit(t *testing.T) {
	l, store := newFixture(t, 100)

	adj, err := l.Adjust(context.Background(), "a1", decimal.Zero, "no-op check", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if adj.Transaction.Type != models.TransactionAdminAdjustmentDebit || !adj.Transaction.Amount.IsZero() {
		t.Fatalf("want zero-amount debit, got %+v", adj.Transaction)
	}
	if store.adjustments != 1 {
		t.Fatalf("adjustments=%d want 1", store.adjustments)
	}
	if got := balanceOf(t, store, "a1"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance=%s want 100", got)
	}
}

func TestAdjustStoreFailureLeavesLedgerBalanced(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 0)
	connReset := errors.New("connection reset")
	store.failAdjust = connReset

	if _, err := l.Adjust(ctx, "a1", decimal.NewFromInt(50), "correction", "admin"); !errors.Is(err, connReset) {
		t.Fatalf("want store error, got %v", err)
	}
	if store.persists != 0 {
		t.Fatalf("failed adjustment persisted %d times", store.persists)
	}
	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 0 {
		t.Fatalf("transactions after failed adjustment=%d want 0", len(txs))
	}
	rec, err := l.Reconcile(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Balanced() || !rec.StoredBalance.IsZero() {
		t.Fatalf("ledger out of balance after failed adjustment: %+v", rec)
	}
}

func TestAdjustIgnoresFreeze(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 100)

	if _, err := l.Freeze(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Adjust(ctx, "a1", decimal.NewFromInt(-25), "chargeback", "admin"); err != nil {
		t.Fatalf("frozen account adjustment err=%v", err)
	}
	if got := balanceOf(t, store, "a1"); !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("balance=%s want 75", got)
	}
}

func TestAdjustmentsKeepLedgerBalanced(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 0)

	deltas := []string{"100", "-20.5", "0", "13.37", "-92.87", "250"}
	for _, d := range deltas {
		if _, err := l.Adjust(ctx, "a1", decimal.RequireFromString(d), "sequence", "admin"); err != nil {
			t.Fatalf("delta=%s err=%v", d, err)
		}
	}

	rec, err := l.Reconcile(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Balanced() {
		t.Fatalf("ledger out of balance: %+v", rec)
	}
	if rec.EntryCount != len(deltas) {
		t.Fatalf("entries=%d want %d", rec.EntryCount, len(deltas))
	}
	if want := decimal.RequireFromString("250"); !balanceOf(t, store, "a1").Equal(want) {
		t.Fatalf("balance=%s want %s", balanceOf(t, store, "a1"), want)
	}
}

func TestConcurrentAdjustmentsSameAccount(t *testing.T) {
	l, store := newFixture(t, 0)
	// the memory store is safe for concurrent use; the counting wrapper is not
	l.store = store.MemoryRecordStore

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.Adjust(context.Background(), "a1", decimal.NewFromInt(2), "bulk", "admin"); err != nil {
				t.Errorf("adjust err=%v", err)
			}
		}()
	}
	wg.Wait()

	rec, _ := l.Reconcile(context.Background(), "a1")
	if !rec.StoredBalance.Equal(decimal.NewFromInt(100)) || !rec.Balanced() {
		t.Fatalf("unexpected reconciliation %+v", rec)
	}
}

func TestRecordDoesNotTouchBalance(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 100)

	tx, err := l.Record(ctx, "a1", models.TransactionDeposit, decimal.NewFromInt(40), "teller deposit")
	if err != nil {
		t.Fatal(err)
	}
	if tx.ID == "" || tx.Timestamp.IsZero() || tx.CustomerID != "c1" {
		t.Fatalf("transaction fields not populated: %+v", tx)
	}
	if got := balanceOf(t, store, "a1"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance=%s want 100", got)
	}
	if store.persists != 1 {
		t.Fatalf("persists=%d want 1", store.persists)
	}
}

func TestRecordValidation(t *testing.T) {
	l, store := newFixture(t, 100)
	ctx := context.Background()

	if _, err := l.Record(ctx, "a1", models.TransactionDeposit, decimal.NewFromInt(-1), "bad"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("negative amount: want ErrValidation, got %v", err)
	}
	if _, err := l.Record(ctx, "a1", models.TransactionType("bonus"), decimal.NewFromInt(1), "bad"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("unknown type: want ErrValidation, got %v", err)
	}
	if _, err := l.Record(ctx, "nope", models.TransactionDeposit, decimal.NewFromInt(1), "bad"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown account: want ErrNotFound, got %v", err)
	}
	if store.writes() != 0 {
		t.Fatalf("rejected records wrote %d times", store.writes())
	}
}

func TestFreezeUnfreezeCycle(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 100)

	frozen, err := l.Freeze(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if frozen.Status != models.AccountStatusFrozen || frozen.FrozenAt == nil {
		t.Fatalf("unexpected frozen account %+v", frozen)
	}

	before, _ := store.GetAccount(ctx, "a1")
	writes := store.writes()
	if _, err := l.Freeze(ctx, "a1"); !errors.Is(err, models.ErrAlreadyFrozen) {
		t.Fatalf("want ErrAlreadyFrozen, got %v", err)
	}
	after, _ := store.GetAccount(ctx, "a1")
	if store.writes() != writes || !after.FrozenAt.Equal(*before.FrozenAt) {
		t.Fatalf("second freeze changed state")
	}

	active, err := l.Unfreeze(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := store.GetAccount(ctx, "a1")
	if active.Status != models.AccountStatusActive || stored.Status != models.AccountStatusActive || stored.FrozenAt != nil {
		t.Fatalf("unfreeze did not restore active state: %+v", stored)
	}

	if _, err := l.Unfreeze(ctx, "a1"); !errors.Is(err, models.ErrNotFrozen) {
		t.Fatalf("want ErrNotFrozen, got %v", err)
	}
}

func TestSetCustomerStatus(t *testing.T) {
	ctx := context.Background()
	l, store := newFixture(t, 0)

	for _, s := range []string{"suspended", "closed", "active"} {
		c, err := l.SetCustomerStatus(ctx, "c1", s)
		if err != nil {
			t.Fatalf("status=%s err=%v", s, err)
		}
		if string(c.Status) != s {
			t.Fatalf("status=%s got %s", s, c.Status)
		}
	}

	writes := store.writes()
	if _, err := l.SetCustomerStatus(ctx, "c1", "deleted"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if _, err := l.SetCustomerStatus(ctx, "nobody", "active"); !errors.Is(err, models.ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
	if store.writes() != writes {
		t.Fatalf("rejected status changes wrote to the store")
	}
}
