package payments

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/shopspring/decimal"
)

// MarshalJSON implements the json.Marshaler interface for Transaction.
// Keys are written in a fixed order: type, client, tx, amount.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	w.Append("client", t.Client)
	w.Append("tx", t.ID)
	if t.Amount.Valid {
		w.Append("amount", json.Number(t.Amount.Decimal.String()))
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
// The amount may be a number, a quoted number, null or missing.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type   string              `json:"type"`
		Client *ClientID           `json:"client"`
		ID     *TxID               `json:"tx"`
		Amount decimal.NullDecimal `json:"amount"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	typ, err := ParseTxType(temp.Type)
	if err != nil {
		return err
	}
	if temp.Client == nil {
		return errors.New("client is missing")
	}
	if temp.ID == nil {
		return errors.New("tx is missing")
	}
	amount, err := normalizeAmount(temp.Amount)
	if err != nil {
		return err
	}

	*t = Transaction{Type: typ, Client: *temp.Client, ID: *temp.ID, Amount: amount}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Account.
// Balances are written as numbers with Scale fractional digits.
func (a Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("client", a.Client)
	w.Append("available", json.Number(FormatAmount(a.Available)))
	w.Append("held", json.Number(FormatAmount(a.Held)))
	w.Append("total", json.Number(FormatAmount(a.Total())))
	w.Append("locked", a.Locked)
	return w.MarshalJSON()
}

// JSONLDecoder reads transactions from a stream of JSONL data, one JSON object
// per line. Empty lines are skipped.
type JSONLDecoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONLDecoder returns a decoder reading from r.
func NewJSONLDecoder(r io.Reader) *JSONLDecoder {
	return &JSONLDecoder{scanner: bufio.NewScanner(r)}
}

// Line returns the input line of the last decoded record.
func (d *JSONLDecoder) Line() int { return d.line }

// Decode returns the next transaction, or io.EOF at the end of the input.
func (d *JSONLDecoder) Decode() (Transaction, error) {
	for d.scanner.Scan() {
		d.line++
		lineBytes := bytes.TrimSpace(d.scanner.Bytes())
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return Transaction{}, &ParseError{Line: d.line, Err: err}
		}
		return tx, nil
	}

	if err := d.scanner.Err(); err != nil {
		return Transaction{}, fmt.Errorf("error reading from input: %w", err)
	}
	return Transaction{}, io.EOF
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeAccountsJSON writes accounts as an indented JSON array.
func EncodeAccountsJSON(w io.Writer, accounts iter.Seq[Account]) error {
	list := make([]Account, 0)
	for a := range accounts {
		list = append(list, a)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return nil
}
