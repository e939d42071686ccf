package query

import (
	"testing"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tx(id, account, customer string, typ models.TransactionType, amount string, at time.Time) models.Transaction {
	return models.Transaction{
		ID: id, AccountID: account, CustomerID: customer,
		Type: typ, Amount: decimal.RequireFromString(amount), Timestamp: at,
	}
}

func sample() []models.Transaction {
	return []models.Transaction{
		tx("t1", "a1", "c1", models.TransactionDeposit, "40", t0),
		tx("t2", "a1", "c1", models.TransactionWithdrawal, "50", t0.Add(time.Hour)),
		tx("t3", "a2", "c2", models.TransactionDeposit, "100", t0.Add(2*time.Hour)),
		tx("t4", "a2", "c2", models.TransactionTransferOut, "75.5", t0.Add(time.Hour)),
		tx("t5", "gone", "ghost", models.TransactionDeposit, "100.01", t0.Add(3*time.Hour)),
	}
}

func ids(txs []models.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestAmountRangeIsInclusiveAndSortedNewestFirst(t *testing.T) {
	got := FilterTransactions(sample(), TransactionFilter{MinAmount: dec("50"), MaxAmount: dec("100")})
	SortNewestFirst(got)

	// t2 and t4 share a timestamp; insertion order breaks the tie
	if g := ids(got); !equalIDs(g, "t3", "t2", "t4") {
		t.Fatalf("got %v want [t3 t2 t4]", g)
	}
}

func TestFiltersAreConjunctive(t *testing.T) {
	f := TransactionFilter{AccountID: "a2", Type: models.TransactionDeposit}
	if g := ids(FilterTransactions(sample(), f)); !equalIDs(g, "t3") {
		t.Fatalf("got %v want [t3]", g)
	}

	f = TransactionFilter{CustomerID: "c1", MinAmount: dec("45")}
	if g := ids(FilterTransactions(sample(), f)); !equalIDs(g, "t2") {
		t.Fatalf("got %v want [t2]", g)
	}
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	if got := FilterTransactions(sample(), TransactionFilter{}); len(got) != 5 {
		t.Fatalf("len=%d want 5", len(got))
	}
}

func TestDateRangeIsInclusive(t *testing.T) {
	start, end := t0.Add(time.Hour), t0.Add(2*time.Hour)
	got := FilterTransactions(sample(), TransactionFilter{StartDate: &start, EndDate: &end})
	if g := ids(got); !equalIDs(g, "t2", "t3", "t4") {
		t.Fatalf("got %v want [t2 t3 t4]", g)
	}
}

func TestEnrichLeavesMissingReferencesEmpty(t *testing.T) {
	accounts := []models.Account{{ID: "a1", CustomerID: "c1", Type: "savings"}}
	customers := []models.Customer{{ID: "c1", FirstName: "Ada", LastName: "Lovelace"}}

	got := Enrich(sample(), accounts, customers)
	if got[0].AccountType != "savings" || got[0].CustomerName != "Ada Lovelace" {
		t.Fatalf("t1 not enriched: %+v", got[0])
	}
	if got[4].AccountType != "" || got[4].CustomerName != "" {
		t.Fatalf("dangling reference should stay empty: %+v", got[4])
	}
}

func TestLimit(t *testing.T) {
	if got := Limit(sample(), 2); len(got) != 2 {
		t.Fatalf("len=%d want 2", len(got))
	}
	if got := Limit(sample(), 0); len(got) != 5 {
		t.Fatalf("len=%d want 5", len(got))
	}
}

func TestSearchCustomersCaseInsensitiveOr(t *testing.T) {
	customers := []models.Customer{
		{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{ID: "c2", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil"},
		{ID: "c3", FirstName: "Alan", LastName: "Turing", Email: "alan@LOVELACE.org"},
	}

	got := SearchCustomers(customers, "LoveLace")
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c3" {
		t.Fatalf("unexpected matches %+v", got)
	}
	if got := SearchCustomers(customers, "hop"); len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("unexpected matches %+v", got)
	}
	if got := SearchCustomers(customers, "zzz"); got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil result, got %#v", got)
	}
}

func TestAccountViews(t *testing.T) {
	accounts := []models.Account{{ID: "a1", CustomerID: "c1"}, {ID: "a2", CustomerID: "ghost"}}
	customers := []models.Customer{{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}}

	views := AccountViews(accounts, customers)
	if views[0].CustomerName != "Ada Lovelace" || views[0].CustomerEmail != "ada@example.com" {
		t.Fatalf("owner not resolved: %+v", views[0])
	}
	if views[1].CustomerName != "" {
		t.Fatalf("unknown owner should stay empty: %+v", views[1])
	}
	if got := AccountsOf(accounts, "c1"); len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("AccountsOf=%+v", got)
	}
}
