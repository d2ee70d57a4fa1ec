package payments

import (
	"iter"
	"maps"
	"slices"
)

// Ledger holds every client account and every deposit and withdrawal that
// could still be disputed.
//
// The Ledger is only mutated through Apply. It is not safe for concurrent
// use: transactions are applied one at a time, in input order.
type Ledger struct {
	transactions map[TxID]*StoredTx     // deposits and withdrawals, by ID
	accounts     map[ClientID]*Account // accounts, by client
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		transactions: make(map[TxID]*StoredTx),
		accounts:     make(map[ClientID]*Account),
	}
}

// Account returns a copy of the client's account, and whether it exists.
func (l *Ledger) Account(client ClientID) (Account, bool) {
	a, ok := l.accounts[client]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// Transaction returns a copy of the stored deposit or withdrawal, and whether it exists.
func (l *Ledger) Transaction(id TxID) (StoredTx, bool) {
	tx, ok := l.transactions[id]
	if !ok {
		return StoredTx{}, false
	}
	return *tx, true
}

// Accounts iterates over copies of all accounts, in ascending client order.
func (l *Ledger) Accounts() iter.Seq[Account] {
	return func(yield func(Account) bool) {
		for _, client := range slices.Sorted(maps.Keys(l.accounts)) {
			if !yield(*l.accounts[client]) {
				return
			}
		}
	}
}

// Len returns the number of accounts in the ledger.
func (l *Ledger) Len() int { return len(l.accounts) }

// account returns the client's account, creating an empty one if needed.
func (l *Ledger) account(client ClientID) *Account {
	a, ok := l.accounts[client]
	if !ok {
		a = &Account{Client: client}
		l.accounts[client] = a
	}
	return a
}

// referenced returns the stored transaction a dispute, resolve or chargeback
// points to, checking that it belongs to the same client.
func (l *Ledger) referenced(tx Transaction) (*StoredTx, error) {
	ref, ok := l.transactions[tx.ID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	if ref.Client != tx.Client {
		return nil, ErrUnauthorized
	}
	if !ref.Type.Stored() {
		return nil, ErrIndisputable
	}
	return ref, nil
}

// Apply applies a single transaction to the ledger.
//
// On success, balances, dispute flags and the lock flag are updated, and
// deposits and withdrawals are recorded for later disputes. On failure a
// *TransactionError is returned and nothing changes, except that an empty
// account is created for a client seen for the first time.
//
// Checks run in this order: duplicate ID (deposits and withdrawals), locked
// account, missing amount, then the rules specific to the transaction type.
func (l *Ledger) Apply(tx Transaction) error {
	if tx.Type.Stored() {
		if _, exists := l.transactions[tx.ID]; exists {
			return reject(tx, ErrDuplicateTransactionID)
		}
	}

	account := l.account(tx.Client)
	if account.Locked {
		return reject(tx, ErrAccountLocked)
	}

	amount, err := tx.validate()
	if err != nil {
		return reject(tx, err)
	}

	switch tx.Type {
	case TxDeposit:
		account.Available = account.Available.Add(amount)

	case TxWithdrawal:
		if amount.GreaterThan(account.Available) {
			return reject(tx, ErrInsufficientFunds)
		}
		account.Available = account.Available.Sub(amount)

	case TxDispute:
		ref, err := l.referenced(tx)
		if err != nil {
			return reject(tx, err)
		}
		if ref.Disputed {
			return reject(tx, ErrAlreadyDisputed)
		}
		ref.Disputed = true
		// A withdrawal already left the available funds.
		if ref.Type == TxDeposit {
			account.Available = account.Available.Sub(ref.Amount)
		}
		account.Held = account.Held.Add(ref.Amount)

	case TxResolve:
		ref, err := l.referenced(tx)
		if err != nil {
			return reject(tx, err)
		}
		if !ref.Disputed {
			return reject(tx, ErrNotDisputed)
		}
		ref.Disputed = false
		account.Available = account.Available.Add(ref.Amount)
		account.Held = account.Held.Sub(ref.Amount)

	case TxChargeback:
		ref, err := l.referenced(tx)
		if err != nil {
			return reject(tx, err)
		}
		if !ref.Disputed {
			return reject(tx, ErrNotDisputed)
		}
		ref.Disputed = false
		account.Held = account.Held.Sub(ref.Amount)
		account.Locked = true
	}

	if tx.Type.Stored() {
		l.transactions[tx.ID] = &StoredTx{Type: tx.Type, Client: tx.Client, Amount: amount}
	}
	return nil
}
