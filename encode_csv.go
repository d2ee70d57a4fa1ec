package payments

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// csvColumns are the columns of a transaction log, in canonical order.
var csvColumns = []string{"type", "client", "tx", "amount"}

// CSVDecoder reads transactions from a CSV log with a header line
//
//	type, client, tx, amount
//
// Fields are trimmed, columns may come in any order, and the amount column may
// be left out of rows that do not need it.
type CSVDecoder struct {
	r    *csv.Reader
	cols map[string]int // column index by name, nil until the header is read
	line int
}

// NewCSVDecoder returns a decoder reading from r.
func NewCSVDecoder(r io.Reader) *CSVDecoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &CSVDecoder{r: cr}
}

// Line returns the input line of the last decoded record.
func (d *CSVDecoder) Line() int { return d.line }

func (d *CSVDecoder) readHeader() error {
	header, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("could not read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvColumns[:3] {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("csv header %q: missing column %q", strings.Join(header, ","), name)
		}
	}
	d.cols = cols
	return nil
}

// Decode returns the next transaction, or io.EOF at the end of the input.
func (d *CSVDecoder) Decode() (Transaction, error) {
	if d.cols == nil {
		if err := d.readHeader(); err != nil {
			return Transaction{}, err
		}
	}

	record, err := d.r.Read()
	if errors.Is(err, io.EOF) {
		return Transaction{}, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			d.line = perr.Line
			return Transaction{}, &ParseError{Line: perr.Line, Err: perr.Err}
		}
		return Transaction{}, fmt.Errorf("error reading from input: %w", err)
	}
	d.line, _ = d.r.FieldPos(0)

	field := func(name string) string {
		i, ok := d.cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	tx, err := parseRecord(field("type"), field("client"), field("tx"), field("amount"))
	if err != nil {
		return Transaction{}, &ParseError{Line: d.line, Err: err}
	}
	return tx, nil
}

// parseRecord builds a Transaction out of its textual fields.
func parseRecord(typ, client, id, amount string) (Transaction, error) {
	t, err := ParseTxType(typ)
	if err != nil {
		return Transaction{}, err
	}
	c, err := strconv.ParseUint(client, 10, 16)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid client %q: %w", client, err)
	}
	i, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid tx %q: %w", id, err)
	}
	a, err := ParseAmount(amount)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Type: t, Client: ClientID(c), ID: TxID(i), Amount: a}, nil
}

// CSVEncoder writes transactions as a CSV log, header included.
type CSVEncoder struct {
	w      *csv.Writer
	header bool
}

// NewCSVEncoder returns an encoder writing to w. Call Flush when done.
func NewCSVEncoder(w io.Writer) *CSVEncoder {
	return &CSVEncoder{w: csv.NewWriter(w)}
}

// Encode writes a single transaction.
func (e *CSVEncoder) Encode(tx Transaction) error {
	if !e.header {
		e.header = true
		if err := e.w.Write(csvColumns); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}
	var amount string
	if tx.Amount.Valid {
		amount = tx.Amount.Decimal.String()
	}
	record := []string{
		string(tx.Type),
		strconv.FormatUint(uint64(tx.Client), 10),
		strconv.FormatUint(uint64(tx.ID), 10),
		amount,
	}
	if err := e.w.Write(record); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (e *CSVEncoder) Flush() error {
	e.w.Flush()
	return e.w.Error()
}

// EncodeAccountsCSV writes accounts as CSV, one line per account, with the
// header
//
//	client,available,held,total,locked
func EncodeAccountsCSV(w io.Writer, accounts iter.Seq[Account]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for a := range accounts {
		record := []string{
			strconv.FormatUint(uint64(a.Client), 10),
			FormatAmount(a.Available),
			FormatAmount(a.Held),
			FormatAmount(a.Total()),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write account %d: %w", a.Client, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
