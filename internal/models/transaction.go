package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit               TransactionType = "deposit"
	TransactionWithdrawal            TransactionType = "withdrawal"
	TransactionTransferIn            TransactionType = "transfer_in"
	TransactionTransferOut           TransactionType = "transfer_out"
	TransactionAdminAdjustmentCredit TransactionType = "admin_adjustment_credit"
	TransactionAdminAdjustmentDebit  TransactionType = "admin_adjustment_debit"
)

func (t TransactionType) Valid() bool {
	return t.IsCredit() || t.IsDebit()
}

// IsCredit reports whether the type adds its amount to the balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionDeposit, TransactionTransferIn, TransactionAdminAdjustmentCredit:
		return true
	}
	return false
}

func (t TransactionType) IsDebit() bool {
	switch t {
	case TransactionWithdrawal, TransactionTransferOut, TransactionAdminAdjustmentDebit:
		return true
	}
	return false
}

func (t TransactionType) IsAdminAdjustment() bool {
	return t == TransactionAdminAdjustmentCredit || t == TransactionAdminAdjustmentDebit
}

// Transaction is an immutable ledger record. Amount is a non-negative
// magnitude; the direction comes from Type.
type Transaction struct {
	ID          string          `json:"transaction_id"`
	AccountID   string          `json:"account_id"`
	CustomerID  string          `json:"customer_id"`
	Type        TransactionType `json:"transaction_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

// EnrichedTransaction is a transaction with display fields resolved from the
// referenced account and customer. Unresolvable references leave them empty.
type EnrichedTransaction struct {
	Transaction
	AccountType  string `json:"account_type,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}
