package renderer

import (
	"iter"

	"github.com/etnz/payments"
	"github.com/shopspring/decimal"
)

// Accounts represents the final state of all accounts, ready to render.
// Amounts are already formatted.
type Accounts struct {
	// Source is the name of the replayed log, if any.
	Source string `json:"source,omitempty"`
	// Total is the sum of all account totals.
	Total string `json:"total"`
	// Held is the sum of all held funds.
	Held string `json:"held"`
	// Locked is the number of locked accounts.
	Locked int `json:"locked"`
	// Accounts lists every account in client order.
	Accounts []AccountRow `json:"accounts"`
}

// AccountRow represents a single account.
type AccountRow struct {
	Client    payments.ClientID `json:"client"`
	Available string            `json:"available"`
	Held      string            `json:"held"`
	Total     string            `json:"total"`
	Locked    bool              `json:"locked"`
}

// NewAccounts builds the Accounts report. Amounts are formatted in the
// currency code, or as plain decimals if code is empty.
func NewAccounts(source string, accounts iter.Seq[payments.Account], code string) *Accounts {
	a := &Accounts{Source: source, Accounts: []AccountRow{}}
	total, held := decimal.Zero, decimal.Zero
	for acc := range accounts {
		total = total.Add(acc.Total())
		held = held.Add(acc.Held)
		if acc.Locked {
			a.Locked++
		}
		a.Accounts = append(a.Accounts, AccountRow{
			Client:    acc.Client,
			Available: formatMoney(acc.Available, code),
			Held:      formatMoney(acc.Held, code),
			Total:     formatMoney(acc.Total(), code),
			Locked:    acc.Locked,
		})
	}
	a.Total = formatMoney(total, code)
	a.Held = formatMoney(held, code)
	return a
}
