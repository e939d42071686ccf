package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportCustomerSummary    ReportType = "customer_summary"
	ReportAccountSummary     ReportType = "account_summary"
	ReportTransactionSummary ReportType = "transaction_summary"
)

// Report is a generated system report. Exactly one of the summary sections
// is set, matching Type.
type Report struct {
	Type        ReportType `json:"report_type"`
	GeneratedAt time.Time  `json:"generated_at"`
	GeneratedBy string     `json:"generated_by"`

	Customers    *CustomerSummary    `json:"customer_summary,omitempty"`
	Accounts     *AccountSummary     `json:"account_summary,omitempty"`
	Transactions *TransactionSummary `json:"transaction_summary,omitempty"`
}

type CustomerSummary struct {
	TotalCustomers    int `json:"total_customers"`
	ActiveCustomers   int `json:"active_customers"`
	InactiveCustomers int `json:"inactive_customers"`
}

type AccountTypeTotals struct {
	Count        int             `json:"count"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

type AccountSummary struct {
	TotalAccounts  int                          `json:"total_accounts"`
	FrozenAccounts int                          `json:"frozen_accounts"`
	AccountsByType map[string]AccountTypeTotals `json:"accounts_by_type"`
	TotalBalance   decimal.Decimal              `json:"total_balance"`
}

type TransactionTypeTotals struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type TransactionSummary struct {
	TotalTransactions    int                                       `json:"total_transactions"`
	TransactionsByType   map[TransactionType]TransactionTypeTotals `json:"transactions_by_type"`
	NetTransactionAmount decimal.Decimal                           `json:"net_transaction_amount"`
}
