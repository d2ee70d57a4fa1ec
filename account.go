package payments

import "github.com/shopspring/decimal"

// Account holds the balances of a single client.
type Account struct {
	Client    ClientID
	Available decimal.Decimal // Available funds, usable by the client.
	Held      decimal.Decimal // Held funds, frozen by open disputes.
	Locked    bool            // Locked is set by a chargeback and never cleared.
}

// NewAccount returns an empty, unlocked account.
func NewAccount(client ClientID) Account {
	return Account{Client: client}
}

// Total returns the client's full balance: available plus held funds.
func (a Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Equal reports whether both accounts have the same client, balances and lock state.
func (a Account) Equal(b Account) bool {
	return a.Client == b.Client &&
		a.Available.Equal(b.Available) &&
		a.Held.Equal(b.Held) &&
		a.Locked == b.Locked
}
