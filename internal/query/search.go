// Package query filters, orders and enriches store records for display.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionFilter is a conjunction of optional predicates. Zero-valued
// fields are not applied.
type TransactionFilter struct {
	CustomerID string
	AccountID  string
	Type       models.TransactionType
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
}

// Matches reports whether tx satisfies every set predicate. Ranges are inclusive.
func (f TransactionFilter) Matches(tx models.Transaction) bool {
	if f.CustomerID != "" && tx.CustomerID != f.CustomerID {
		return false
	}
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.MinAmount != nil && tx.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && tx.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.StartDate != nil && tx.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

func FilterTransactions(txs []models.Transaction, f TransactionFilter) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// SortNewestFirst orders transactions by timestamp, most recent first.
// Equal timestamps keep their insertion order.
func SortNewestFirst(txs []models.Transaction) {
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// Limit truncates txs to at most n entries; n <= 0 keeps everything.
func Limit(txs []models.Transaction, n int) []models.Transaction {
	if n <= 0 || len(txs) <= n {
		return txs
	}
	return txs[:n]
}

// Enrich attaches account type and customer name to each transaction.
// References that no longer resolve leave the fields empty.
func Enrich(txs []models.Transaction, accounts []models.Account, customers []models.Customer) []models.EnrichedTransaction {
	accountTypes := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accountTypes[a.ID] = a.Type
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.FullName()
	}

	out := make([]models.EnrichedTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, models.EnrichedTransaction{
			Transaction:  tx,
			AccountType:  accountTypes[tx.AccountID],
			CustomerName: names[tx.CustomerID],
		})
	}
	return out
}

// SearchCustomers matches term case-insensitively against first name,
// last name or email.
func SearchCustomers(customers []models.Customer, term string) []models.Customer {
	term = strings.ToLower(term)
	out := make([]models.Customer, 0)
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.FirstName), term) ||
			strings.Contains(strings.ToLower(c.LastName), term) ||
			strings.Contains(strings.ToLower(c.Email), term) {
			out = append(out, c)
		}
	}
	return out
}

// AccountsOf returns the accounts owned by customerID.
func AccountsOf(accounts []models.Account, customerID string) []models.Account {
	out := make([]models.Account, 0)
	for _, a := range accounts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out
}

// AccountViews pairs each account with its owner's name and email.
func AccountViews(accounts []models.Account, customers []models.Customer) []models.AccountView {
	byID := make(map[string]models.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}

	out := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		view := models.AccountView{Account: a}
		if c, ok := byID[a.CustomerID]; ok {
			view.CustomerName = c.FullName()
			view.CustomerEmail = c.Email
		}
		out = append(out, view)
	}
	return out
}
