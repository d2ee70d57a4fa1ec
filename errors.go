package payments

import (
	"errors"
	"fmt"
)

// Errors returned by Ledger.Apply, always wrapped in a *TransactionError.
var (
	// ErrMalformed is returned when a deposit or withdrawal has no amount.
	ErrMalformed = errors.New("malformed transaction")
	// ErrDuplicateTransactionID is returned when a deposit or withdrawal reuses an ID.
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")
	// ErrInsufficientFunds is returned when a withdrawal exceeds the available funds.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTransactionNotFound is returned when the referenced transaction is unknown.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrNotDisputed is returned when resolving or charging back an undisputed transaction.
	ErrNotDisputed = errors.New("transaction not disputed")
	// ErrAlreadyDisputed is returned when disputing a transaction twice.
	ErrAlreadyDisputed = errors.New("transaction already disputed")
	// ErrIndisputable is returned when the referenced transaction is neither a deposit nor a withdrawal.
	ErrIndisputable = errors.New("transaction cannot be disputed")
	// ErrAccountLocked is returned for any transaction on a locked account.
	ErrAccountLocked = errors.New("account locked")
	// ErrUnauthorized is returned when the referenced transaction belongs to another client.
	ErrUnauthorized = errors.New("unauthorized")
)

// TransactionError reports a transaction rejected by the ledger.
type TransactionError struct {
	Tx  Transaction
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s tx %d for client %d: %v", e.Tx.Type, e.Tx.ID, e.Tx.Client, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func reject(tx Transaction, err error) error {
	return &TransactionError{Tx: tx, Err: err}
}

// ParseError reports an input record that could not be decoded into a
// Transaction.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
