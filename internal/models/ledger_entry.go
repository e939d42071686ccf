package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the signed effect of one transaction on its account.
type LedgerEntry struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"` // positive for credits, negative for debits
	CreatedAt     time.Time       `json:"created_at"`
}

// Entry converts a transaction into its signed ledger entry.
func (t Transaction) Entry() LedgerEntry {
	amount := t.Amount
	if t.Type.IsDebit() {
		amount = amount.Neg()
	}
	return LedgerEntry{
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		Amount:        amount,
		CreatedAt:     t.Timestamp,
	}
}

// Reconciliation compares an account's stored balance with the net of its ledger.
type Reconciliation struct {
	AccountID     string          `json:"account_id"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Difference    decimal.Decimal `json:"difference"`
	EntryCount    int             `json:"entry_count"`
}

func (r Reconciliation) Balanced() bool {
	return r.Difference.IsZero()
}
