// Package report derives summary reports from the current record state.
package report

import (
	"fmt"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Input is the record state a report is computed from.
type Input struct {
	Customers    []models.Customer
	Accounts     []models.Account
	Transactions []models.Transaction
}

// ParseType accepts customer_summary, account_summary or transaction_summary.
func ParseType(raw string) (models.ReportType, error) {
	switch t := models.ReportType(raw); t {
	case models.ReportCustomerSummary, models.ReportAccountSummary, models.ReportTransactionSummary:
		return t, nil
	}
	return "", fmt.Errorf("%w: %s", models.ErrUnknownReportType, raw)
}

// Generate builds the named report stamped with generatedAt and generatedBy.
func Generate(raw string, in Input, generatedAt time.Time, generatedBy string) (*models.Report, error) {
	t, err := ParseType(raw)
	if err != nil {
		return nil, err
	}

	r := &models.Report{
		Type:        t,
		GeneratedAt: generatedAt,
		GeneratedBy: generatedBy,
	}
	switch t {
	case models.ReportCustomerSummary:
		s := CustomerSummary(in.Customers)
		r.Customers = &s
	case models.ReportAccountSummary:
		s := AccountSummary(in.Accounts)
		r.Accounts = &s
	case models.ReportTransactionSummary:
		s := TransactionSummary(in.Transactions)
		r.Transactions = &s
	}
	return r, nil
}

// CustomerSummary counts customers; a customer without a status counts as active.
func CustomerSummary(customers []models.Customer) models.CustomerSummary {
	active := 0
	for _, c := range customers {
		if c.EffectiveStatus() == models.CustomerStatusActive {
			active++
		}
	}
	return models.CustomerSummary{
		TotalCustomers:    len(customers),
		ActiveCustomers:   active,
		InactiveCustomers: len(customers) - active,
	}
}

func AccountSummary(accounts []models.Account) models.AccountSummary {
	s := models.AccountSummary{
		TotalAccounts:  len(accounts),
		AccountsByType: make(map[string]models.AccountTypeTotals),
		TotalBalance:   decimal.Zero,
	}
	for _, a := range accounts {
		totals, ok := s.AccountsByType[a.Type]
		if !ok {
			totals.TotalBalance = decimal.Zero
		}
		totals.Count++
		totals.TotalBalance = totals.TotalBalance.Add(a.Balance)
		s.AccountsByType[a.Type] = totals

		s.TotalBalance = s.TotalBalance.Add(a.Balance)
		if a.IsFrozen() {
			s.FrozenAccounts++
		}
	}
	return s
}

// TransactionSummary groups transactions by type. The net amount covers
// customer money movement only: deposits and incoming transfers minus
// withdrawals and outgoing transfers. Admin adjustments are grouped but
// left out of the net.
func TransactionSummary(txs []models.Transaction) models.TransactionSummary {
	s := models.TransactionSummary{
		TotalTransactions:    len(txs),
		TransactionsByType:   make(map[models.TransactionType]models.TransactionTypeTotals),
		NetTransactionAmount: decimal.Zero,
	}
	for _, tx := range txs {
		totals, ok := s.TransactionsByType[tx.Type]
		if !ok {
			totals.TotalAmount = decimal.Zero
		}
		totals.Count++
		totals.TotalAmount = totals.TotalAmount.Add(tx.Amount)
		s.TransactionsByType[tx.Type] = totals

		switch tx.Type {
		case models.TransactionDeposit, models.TransactionTransferIn:
			s.NetTransactionAmount = s.NetTransactionAmount.Add(tx.Amount)
		case models.TransactionWithdrawal, models.TransactionTransferOut:
			s.NetTransactionAmount = s.NetTransactionAmount.Sub(tx.Amount)
		}
	}
	return s
}
