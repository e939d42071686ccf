package models

import "github.com/shopspring/decimal"

// CustomerDetails is a customer together with every account it owns.
type CustomerDetails struct {
	Customer
	Accounts []Account `json:"accounts"`
}

// AccountView is an account with its owner's name and email, when the owner exists.
type AccountView struct {
	Account
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type AccountDetails struct {
	AccountView
	Transactions []Transaction `json:"transactions"`
}

// Adjustment is the outcome of an administrative balance change.
type Adjustment struct {
	AccountID       string          `json:"account_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Transaction     Transaction     `json:"transaction"`
}
