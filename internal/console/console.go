// Package console is the interactive admin portal: a menu tree over the
// admin service reading from an io.Reader and writing to an io.Writer.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/admin"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/query"
	"github.com/shopspring/decimal"
)

const (
	separator           = "------------------------------"
	dateLayout          = "2006-01-02"
	defaultDisplayLimit = 20
	recentAccountTxs    = 5
)

// errQuit is returned by prompts once input is exhausted.
var errQuit = errors.New("input closed")

type Console struct {
	svc   *admin.Service
	in    *bufio.Scanner
	out   io.Writer
	token string
}

func New(svc *admin.Service, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

func (c *Console) prompt(label string) (string, error) {
	c.printf("%s", label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// report prints the user-facing outcome of a failed operation.
func (c *Console) report(err error) {
	switch {
	case admin.IsAuthError(err):
		c.println("Admin authentication required.")
	case errors.Is(err, models.ErrInvalidCredentials):
		c.println("Invalid admin credentials.")
	case errors.Is(err, models.ErrCustomerNotFound):
		c.println("Customer not found.")
	case errors.Is(err, models.ErrAccountNotFound):
		c.println("Account not found.")
	case errors.Is(err, models.ErrAlreadyFrozen):
		c.println("Account is already frozen.")
	case errors.Is(err, models.ErrNotFrozen):
		c.println("Account is not frozen.")
	case errors.Is(err, models.ErrAdminExists):
		c.println("Admin user already exists.")
	case errors.Is(err, models.ErrAdminNotFound):
		c.println("Admin user not found.")
	case errors.Is(err, models.ErrSelfRemoval):
		c.println("Cannot remove the currently logged in admin.")
	case errors.Is(err, models.ErrUnknownReportType):
		c.println("Invalid report type.")
	default:
		c.printf("Error: %v\n", err)
	}
}

// Run logs in and serves the main menu. Logging out returns to the login
// prompt; exiting, a failed login or the end of input stops it.
func (c *Console) Run(ctx context.Context) error {
	for {
		exit, err := c.session(ctx)
		c.logout(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil || exit {
			return err
		}
	}
}

// session runs one login and main-menu cycle. It reports whether the
// portal should exit.
func (c *Console) session(ctx context.Context) (bool, error) {
	c.println("\n--- Kingston Bank Admin Portal ---")
	email, err := c.prompt("Admin Email: ")
	if err != nil {
		return true, err
	}
	password, err := c.prompt("Admin Password: ")
	if err != nil {
		return true, err
	}

	sess, err := c.svc.Login(ctx, email, password)
	if err != nil {
		c.report(err)
		c.println("Admin authentication failed.")
		return true, nil
	}
	c.token = sess.Token
	c.printf("Administrator logged in: %s\n", sess.AdminEmail)

	return c.mainMenu(ctx)
}

func (c *Console) logout(ctx context.Context) {
	if c.token == "" {
		return
	}
	if err := c.svc.Logout(ctx, c.token); err != nil {
		c.println("No administrator is currently logged in.")
	} else {
		c.println("Administrator logged out.")
	}
	c.token = ""
}

type menu struct {
	title   string
	items   []string
	actions map[string]func(context.Context) error
	back    string
}

// loop shows m until its back choice is picked.
func (c *Console) loop(ctx context.Context, m menu) error {
	for {
		c.printf("\n--- %s ---\n", m.title)
		for i, item := range m.items {
			c.printf("%d. %s\n", i+1, item)
		}
		choice, err := c.prompt("Enter your choice: ")
		if err != nil {
			return err
		}
		if choice == m.back {
			return nil
		}
		action, ok := m.actions[choice]
		if !ok {
			c.println("Invalid choice. Please try again.")
			continue
		}
		if err := action(ctx); err != nil {
			return err
		}
	}
}

func (c *Console) mainMenu(ctx context.Context) (exit bool, err error) {
	for {
		c.println("\n--- Kingston Bank Admin Portal ---")
		c.println("1. Customer Management")
		c.println("2. Account Management")
		c.println("3. Transaction Management")
		c.println("4. System Reports")
		c.println("5. Admin User Management")
		c.println("6. Logout")
		c.println("0. Exit")

		choice, err := c.prompt("Enter your choice: ")
		if err != nil {
			return true, err
		}

		switch choice {
		case "1":
			err = c.customerMenu(ctx)
		case "2":
			err = c.accountMenu(ctx)
		case "3":
			err = c.transactionMenu(ctx)
		case "4":
			err = c.reportMenu(ctx)
		case "5":
			err = c.adminMenu(ctx)
		case "6":
			c.logout(ctx)
			c.println("Returning to login.")
			return false, nil
		case "0":
			c.logout(ctx)
			c.println("Exiting admin portal.")
			return true, nil
		default:
			c.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return true, err
		}
	}
}

func (c *Console) customerMenu(ctx context.Context) error {
	return c.loop(ctx, menu{
		title: "Customer Management",
		items: []string{"List All Customers", "Search Customers", "View Customer Details", "Modify Customer Status", "Back to Main Menu"},
		back:  "5",
		actions: map[string]func(context.Context) error{
			"1": c.listCustomers,
			"2": c.searchCustomers,
			"3": c.customerDetails,
			"4": c.customerStatus,
		},
	})
}

func (c *Console) listCustomers(ctx context.Context) error {
	customers, err := c.svc.ListCustomers(ctx, c.token)
	if err != nil {
		c.report(err)
		return nil
	}
	c.println("\n--- All Customers ---")
	for _, cust := range customers {
		c.printf("ID: %s\nName: %s\nEmail: %s\nStatus: %s\n%s\n", cust.ID, cust.FullName(), cust.Email, cust.EffectiveStatus(), separator)
	}
	return nil
}

func (c *Console) searchCustomers(ctx context.Context) error {
	term, err := c.prompt("Enter search term (name or email): ")
	if err != nil {
		return err
	}
	results, err := c.svc.SearchCustomers(ctx, c.token, term)
	if err != nil {
		c.report(err)
		return nil
	}
	c.printf("\n--- Search Results (%d) ---\n", len(results))
	for _, cust := range results {
		c.printf("ID: %s\nName: %s\nEmail: %s\n%s\n", cust.ID, cust.FullName(), cust.Email, separator)
	}
	return nil
}

func (c *Console) customerDetails(ctx context.Context) error {
	id, err := c.prompt("Enter customer ID: ")
	if err != nil {
		return err
	}
	d, err := c.svc.GetCustomerDetails(ctx, c.token, id)
	if err != nil {
		c.report(err)
		return nil
	}
	c.println("\n--- Customer Details ---")
	c.printf("ID: %s\nName: %s\nEmail: %s\nPhone: %s\nAddress: %s\nStatus: %s\nCreated: %s\n",
		d.ID, d.FullName(), d.Email, d.Phone, d.Address, d.EffectiveStatus(), formatTime(d.CreatedAt))
	if len(d.Accounts) > 0 {
		c.println("\nAccounts:")
		for _, a := range d.Accounts {
			c.printf("  - %s: %s (%s)\n", label(a.Type), money(a.Balance), a.Status)
		}
	}
	return nil
}

func (c *Console) customerStatus(ctx context.Context) error {
	id, err := c.prompt("Enter customer ID: ")
	if err != nil {
		return err
	}
	c.println("Status options: active, suspended, closed")
	status, err := c.prompt("Enter new status: ")
	if err != nil {
		return err
	}
	cust, err := c.svc.SetCustomerStatus(ctx, c.token, id, status)
	if err != nil {
		c.report(err)
		return nil
	}
	c.printf("Customer %s status changed to %s.\n", cust.ID, cust.Status)
	return nil
}

func (c *Console) accountMenu(ctx context.Context) error {
	return c.loop(ctx, menu{
		title: "Account Management",
		items: []string{"List All Accounts", "View Account Details", "Freeze Account", "Unfreeze Account", "Adjust Account Balance", "Reconcile Account", "Back to Main Menu"},
		back:  "7",
		actions: map[string]func(context.Context) error{
			"1": c.listAccounts,
			"2": c.accountDetails,
			"3": c.freeze,
			"4": c.unfreeze,
			"5": c.adjust,
			"6": c.reconcile,
		},
	})
}

func (c *Console) listAccounts(ctx context.Context) error {
	views, err := c.svc.ListAccounts(ctx, c.token)
	if err != nil {
		c.report(err)
		return nil
	}
	c.println("\n--- All Accounts ---")
	for _, v := range views {
		c.printf("ID: %s\nType: %s\nCustomer: %s\nBalance: %s\nStatus: %s\n%s\n",
			v.ID, label(v.Type), orUnknown(v.CustomerName), money(v.Balance), v.Status, separator)
	}
	return nil
}

func (c *Console) accountDetails(ctx context.Context) error {
	id, err := c.prompt("Enter account ID: ")
	if err != nil {
		return err
	}
	d, err := c.svc.GetAccountDetails(ctx, c.token, id)
	if err != nil {
		c.report(err)
		return nil
	}
	c.println("\n--- Account Details ---")
	c.printf("ID: %s\nType: %s\nCustomer: %s\nEmail: %s\nBalance: %s\nStatus: %s\nCreated: %s\n",
		d.ID, label(d.Type), orUnknown(d.CustomerName), orUnknown(d.CustomerEmail), money(d.Balance), d.Status, formatTime(d.CreatedAt))
	if len(d.Transactions) > 0 {
		c.println("\nRecent Transactions:")
		for i, tx := range d.Transactions[:min(len(d.Transactions), recentAccountTxs)] {
			c.printf("  %d. %s: %s (%s)\n", i+1, label(string(tx.Type)), money(tx.Amount), formatTime(tx.Timestamp))
		}
	}
	return nil
}

func (c *Console) freeze(ctx context.Context) error {
	id, err := c.prompt("Enter account ID to freeze: ")
	if err != nil {
		return err
	}
	if _, err := c.svc.FreezeAccount(ctx, c.token, id); err != nil {
		c.report(err)
		return nil
	}
	c.printf("Account %s has been frozen.\n", id)
	return nil
}

func (c *Console) unfreeze(ctx context.Context) error {
	id, err := c.prompt("Enter account ID to unfreeze: ")
	if err != nil {
		return err
	}
	if _, err := c.svc.UnfreezeAccount(ctx, c.token, id); err != nil {
		c.report(err)
		return nil
	}
	c.printf("Account %s has been unfrozen.\n", id)
	return nil
}

func (c *Console) adjust(ctx context.Context) error {
	id, err := c.prompt("Enter account ID: ")
	if err != nil {
		return err
	}
	raw, err := c.prompt("Adjustment amount (positive for credit, negative for debit): $")
	if err != nil {
		return err
	}
	delta, perr := decimal.NewFromString(raw)
	if perr != nil {
		c.println("Invalid amount. Please enter a number.")
		return nil
	}
	reason, err := c.prompt("Reason for adjustment: ")
	if err != nil {
		return err
	}
	adj, err := c.svc.AdjustBalance(ctx, c.token, id, delta, reason)
	if err != nil {
		c.report(err)
		return nil
	}
	c.printf("Account %s balance adjusted from %s to %s.\n", adj.AccountID, money(adj.PreviousBalance), money(adj.NewBalance))
	return nil
}

func (c *Console) reconcile(ctx context.Context) error {
	id, err := c.prompt("Enter account ID: ")
	if err != nil {
		return err
	}
	rec, err := c.svc.ReconcileAccount(ctx, c.token, id)
	if err != nil {
		c.report(err)
		return nil
	}
	c.printf("Stored Balance: %s\nLedger Balance: %s\nEntries: %d\n", money(rec.StoredBalance), money(rec.LedgerBalance), rec.EntryCount)
	if rec.Balanced() {
		c.println("Account is balanced.")
	} else {
		c.printf("Difference: %s\n", money(rec.Difference))
	}
	return nil
}

func (c *Console) transactionMenu(ctx context.Context) error {
	return c.loop(ctx, menu{
		title: "Transaction Management",
		items: []string{"List Recent Transactions", "Search Transactions", "Back to Main Menu"},
		back:  "3",
		actions: map[string]func(context.Context) error{
			"1": c.listTransactions,
			"2": c.searchTransactions,
		},
	})
}

func (c *Console) listTransactions(ctx context.Context) error {
	raw, err := c.prompt("Number of transactions to display: ")
	if err != nil {
		return err
	}
	limit := defaultDisplayLimit
	if raw != "" {
		n, perr := strconv.Atoi(raw)
		if perr != nil || n <= 0 {
			c.println("Invalid number. Please enter a positive whole number.")
			return nil
		}
		limit = n
	}
	txs, err := c.svc.ListTransactions(ctx, c.token, limit)
	if err != nil {
		c.report(err)
		return nil
	}
	c.printf("\n--- Recent Transactions (%d) ---\n", len(txs))
	for _, tx := range txs {
		c.printTransaction(tx)
		c.printf("Description: %s\n%s\n", tx.Description, separator)
	}
	return nil
}

func (c *Console) searchTransactions(ctx context.Context) error {
	c.println("\n--- Search Transactions ---")
	c.println("Enter search parameters (leave blank to skip):")

	var f query.TransactionFilter
	var err error
	if f.CustomerID, err = c.prompt("Customer ID: "); err != nil {
		return err
	}
	if f.AccountID, err = c.prompt("Account ID: "); err != nil {
		return err
	}
	typ, err := c.prompt("Transaction Type: ")
	if err != nil {
		return err
	}
	f.Type = models.TransactionType(typ)
	if f.MinAmount, err = c.promptAmount("Minimum Amount: $"); err != nil {
		return err
	}
	if f.MaxAmount, err = c.promptAmount("Maximum Amount: $"); err != nil {
		return err
	}
	if f.StartDate, err = c.promptDate("Start Date (YYYY-MM-DD): ", false); err != nil {
		return err
	}
	if f.EndDate, err = c.promptDate("End Date (YYYY-MM-DD): ", true); err != nil {
		return err
	}

	txs, err := c.svc.SearchTransactions(ctx, c.token, f)
	if err != nil {
		c.report(err)
		return nil
	}
	c.printf("\n--- Search Results (%d) ---\n", len(txs))
	for _, tx := range txs {
		c.printTransaction(tx)
		c.println(separator)
	}
	return nil
}

// promptAmount reads an optional amount. Unparsable input skips the filter.
func (c *Console) promptAmount(label string) (*decimal.Decimal, error) {
	raw, err := c.prompt(label)
	if err != nil || raw == "" {
		return nil, err
	}
	d, perr := decimal.NewFromString(raw)
	if perr != nil {
		c.println("Invalid amount. Skipping this filter.")
		return nil, nil
	}
	return &d, nil
}

// promptDate reads an optional calendar date. An end date covers the whole day.
func (c *Console) promptDate(label string, endOfDay bool) (*time.Time, error) {
	raw, err := c.prompt(label)
	if err != nil || raw == "" {
		return nil, err
	}
	t, perr := time.ParseInLocation(dateLayout, raw, time.Local)
	if perr != nil {
		c.println("Invalid date. Skipping this filter.")
		return nil, nil
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func (c *Console) printTransaction(tx models.EnrichedTransaction) {
	c.printf("ID: %s\nType: %s\nAmount: %s\nAccount: %s (%s)\nCustomer: %s\nTime: %s\n",
		tx.ID, label(string(tx.Type)), money(tx.Amount), label(orUnknown(tx.AccountType)), tx.AccountID,
		orUnknown(tx.CustomerName), formatTime(tx.Timestamp))
}

func (c *Console) reportMenu(ctx context.Context) error {
	show := func(kind models.ReportType) func(context.Context) error {
		return func(ctx context.Context) error {
			r, err := c.svc.GenerateReport(ctx, c.token, string(kind))
			if err != nil {
				c.report(err)
				return nil
			}
			c.printReport(r)
			return nil
		}
	}
	return c.loop(ctx, menu{
		title: "System Reports",
		items: []string{"Customer Summary Report", "Account Summary Report", "Transaction Summary Report", "Back to Main Menu"},
		back:  "4",
		actions: map[string]func(context.Context) error{
			"1": show(models.ReportCustomerSummary),
			"2": show(models.ReportAccountSummary),
			"3": show(models.ReportTransactionSummary),
		},
	})
}

func (c *Console) printReport(r *models.Report) {
	switch {
	case r.Customers != nil:
		c.println("\n--- Customer Summary Report ---")
		c.printf("Total Customers: %d\nActive Customers: %d\nInactive Customers: %d\n",
			r.Customers.TotalCustomers, r.Customers.ActiveCustomers, r.Customers.InactiveCustomers)
	case r.Accounts != nil:
		c.println("\n--- Account Summary Report ---")
		c.printf("Total Accounts: %d\nFrozen Accounts: %d\nTotal Balance: %s\n",
			r.Accounts.TotalAccounts, r.Accounts.FrozenAccounts, money(r.Accounts.TotalBalance))
		c.println("\nAccounts by Type:")
		for _, k := range slices.Sorted(maps.Keys(r.Accounts.AccountsByType)) {
			t := r.Accounts.AccountsByType[k]
			c.printf("  %s: %d accounts, %s total\n", label(k), t.Count, money(t.TotalBalance))
		}
	case r.Transactions != nil:
		c.println("\n--- Transaction Summary Report ---")
		c.printf("Total Transactions: %d\nNet Transaction Amount: %s\n",
			r.Transactions.TotalTransactions, money(r.Transactions.NetTransactionAmount))
		c.println("\nTransactions by Type:")
		for _, k := range slices.Sorted(maps.Keys(r.Transactions.TransactionsByType)) {
			t := r.Transactions.TransactionsByType[k]
			c.printf("  %s: %d transactions, %s total\n", label(string(k)), t.Count, money(t.TotalAmount))
		}
	}
	c.printf("Generated: %s by %s\n", formatTime(r.GeneratedAt), r.GeneratedBy)
}

func (c *Console) adminMenu(ctx context.Context) error {
	return c.loop(ctx, menu{
		title: "Admin User Management",
		items: []string{"Add Admin User", "Remove Admin User", "Back to Main Menu"},
		back:  "3",
		actions: map[string]func(context.Context) error{
			"1": c.addAdmin,
			"2": c.removeAdmin,
		},
	})
}

func (c *Console) addAdmin(ctx context.Context) error {
	email, err := c.prompt("New Admin Email: ")
	if err != nil {
		return err
	}
	password, err := c.prompt("New Admin Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.prompt("Confirm Password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		c.println("Passwords don't match.")
		return nil
	}
	if err := c.svc.AddAdmin(ctx, c.token, email, password); err != nil {
		c.report(err)
		return nil
	}
	c.printf("Admin user added: %s\n", email)
	return nil
}

func (c *Console) removeAdmin(ctx context.Context) error {
	email, err := c.prompt("Admin Email to Remove: ")
	if err != nil {
		return err
	}
	confirm, err := c.prompt(fmt.Sprintf("Are you sure you want to remove admin %s? (y/n): ", email))
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		return nil
	}
	if err := c.svc.RemoveAdmin(ctx, c.token, email); err != nil {
		c.report(err)
		return nil
	}
	c.printf("Admin user removed: %s\n", email)
	return nil
}

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// label turns snake_case identifiers into display text, e.g. "Transfer in".
func label(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
