package renderer

import (
	"errors"
	"strconv"

	"github.com/etnz/payments"
)

// Rejections lists the records of a log that were not applied.
type Rejections struct {
	Source   string         `json:"source,omitempty"`
	Applied  int            `json:"applied"`
	Rejected int            `json:"rejected"`
	Rows     []RejectionRow `json:"rows"`
}

// RejectionRow represents a single rejected record. Type, Client and Tx are
// empty when the record could not be decoded.
type RejectionRow struct {
	Line   int    `json:"line"`
	Type   string `json:"type"`
	Client string `json:"client"`
	Tx     string `json:"tx"`
	Reason string `json:"reason"`
}

// NewRejections builds the Rejections report.
func NewRejections(source string, stats payments.Stats, rejections []payments.Rejection) *Rejections {
	r := &Rejections{
		Source:   source,
		Applied:  stats.Applied,
		Rejected: stats.Rejected,
		Rows:     make([]RejectionRow, 0, len(rejections)),
	}
	for _, rej := range rejections {
		row := RejectionRow{Line: rej.Line, Reason: escapeCell(reason(rej.Err))}
		var txErr *payments.TransactionError
		if errors.As(rej.Err, &txErr) {
			row.Type = string(rej.Tx.Type)
			row.Client = strconv.FormatUint(uint64(rej.Tx.Client), 10)
			row.Tx = strconv.FormatUint(uint64(rej.Tx.ID), 10)
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// reason returns the innermost explanation of a rejection, without the
// transaction or line prefix.
func reason(err error) string {
	var txErr *payments.TransactionError
	if errors.As(err, &txErr) {
		return txErr.Err.Error()
	}
	var perr *payments.ParseError
	if errors.As(err, &perr) {
		return perr.Err.Error()
	}
	return err.Error()
}
