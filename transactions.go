package payments

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TxType is a typed string for identifying transaction types.
type TxType string

// Transaction types, as they appear in the input log.
const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxDispute    TxType = "dispute"
	TxResolve    TxType = "resolve"
	TxChargeback TxType = "chargeback"
)

// ParseTxType parses a transaction type name. The match is case-insensitive and
// ignores surrounding spaces.
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(strings.ToLower(strings.TrimSpace(s))); t {
	case TxDeposit, TxWithdrawal, TxDispute, TxResolve, TxChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Stored reports whether transactions of this type are recorded in the ledger
// and can later be referenced by a dispute, a resolve or a chargeback.
func (t TxType) Stored() bool {
	return t == TxDeposit || t == TxWithdrawal
}

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction.
type TxID uint32

// Transaction is one record of the input log.
//
// Deposits and withdrawals carry an amount. Disputes, resolves and chargebacks
// don't: they reference a previous deposit or withdrawal by ID.
type Transaction struct {
	Type   TxType
	Client ClientID
	ID     TxID
	Amount decimal.NullDecimal
}

// NewDeposit creates a new deposit transaction.
func NewDeposit(client ClientID, id TxID, amount decimal.Decimal) Transaction {
	return Transaction{Type: TxDeposit, Client: client, ID: id, Amount: decimal.NewNullDecimal(amount)}
}

// NewWithdrawal creates a new withdrawal transaction.
func NewWithdrawal(client ClientID, id TxID, amount decimal.Decimal) Transaction {
	return Transaction{Type: TxWithdrawal, Client: client, ID: id, Amount: decimal.NewNullDecimal(amount)}
}

// NewDispute creates a dispute of the transaction id.
func NewDispute(client ClientID, id TxID) Transaction {
	return Transaction{Type: TxDispute, Client: client, ID: id}
}

// NewResolve creates a resolve of the disputed transaction id.
func NewResolve(client ClientID, id TxID) Transaction {
	return Transaction{Type: TxResolve, Client: client, ID: id}
}

// NewChargeback creates a chargeback of the disputed transaction id.
func NewChargeback(client ClientID, id TxID) Transaction {
	return Transaction{Type: TxChargeback, Client: client, ID: id}
}

func (t Transaction) String() string {
	if t.Amount.Valid {
		return fmt.Sprintf("%s client=%d tx=%d amount=%s", t.Type, t.Client, t.ID, t.Amount.Decimal)
	}
	return fmt.Sprintf("%s client=%d tx=%d", t.Type, t.Client, t.ID)
}

// Equal reports whether both transactions describe the same record.
func (t Transaction) Equal(o Transaction) bool {
	if t.Type != o.Type || t.Client != o.Client || t.ID != o.ID || t.Amount.Valid != o.Amount.Valid {
		return false
	}
	return !t.Amount.Valid || t.Amount.Decimal.Equal(o.Amount.Decimal)
}

// validate checks that the fields required by the transaction type are
// present, and returns the amount for deposits and withdrawals.
func (t Transaction) validate() (decimal.Decimal, error) {
	switch t.Type {
	case TxDeposit, TxWithdrawal:
		if !t.Amount.Valid {
			return decimal.Zero, ErrMalformed
		}
		return t.Amount.Decimal, nil
	case TxDispute, TxResolve, TxChargeback:
		return decimal.Zero, nil
	default:
		return decimal.Zero, ErrMalformed
	}
}

// StoredTx is a deposit or withdrawal recorded in the ledger.
type StoredTx struct {
	Type     TxType
	Client   ClientID
	Amount   decimal.Decimal
	Disputed bool
}
