package payments

import (
	"errors"
	"io"
)

// Decoder reads transactions one at a time, in input order.
type Decoder interface {
	// Decode returns the next transaction, io.EOF at the end of the input, or
	// a *ParseError for a record that could not be decoded.
	Decode() (Transaction, error)
	// Line returns the input line of the last decoded record.
	Line() int
}

// Policy tells Replay what to do with a rejected record.
type Policy int

const (
	// SkipInvalid reports rejected records and carries on with the next one.
	SkipInvalid Policy = iota
	// HaltOnError stops at the first rejected record.
	HaltOnError
)

func (p Policy) String() string {
	switch p {
	case SkipInvalid:
		return "skip"
	case HaltOnError:
		return "halt"
	default:
		return "unknown"
	}
}

// Rejection describes a record that was not applied to the ledger.
type Rejection struct {
	Line int         // Line is the input line of the record.
	Tx   Transaction // Tx is the zero Transaction when the record could not be decoded.
	Err  error       // Err is a *TransactionError or a *ParseError.
}

// Stats counts the records processed by Replay.
type Stats struct {
	Applied  int
	Rejected int
}

// Replay decodes every transaction from dec and applies it to the ledger.
//
// Records rejected by the ledger or by the decoder are passed to onReject (if
// not nil). With SkipInvalid the replay continues, with HaltOnError it stops
// and returns the rejection error. Any other decoding error, like an I/O
// failure, always stops the replay.
func (l *Ledger) Replay(dec Decoder, policy Policy, onReject func(Rejection)) (Stats, error) {
	var stats Stats
	rejected := func(r Rejection) error {
		stats.Rejected++
		if onReject != nil {
			onReject(r)
		}
		if policy == HaltOnError {
			return r.Err
		}
		return nil
	}

	for {
		tx, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				return stats, err
			}
			if err := rejected(Rejection{Line: perr.Line, Err: err}); err != nil {
				return stats, err
			}
			continue
		}

		if err := l.Apply(tx); err != nil {
			if err := rejected(Rejection{Line: dec.Line(), Tx: tx, Err: err}); err != nil {
				return stats, err
			}
			continue
		}
		stats.Applied++
	}
}
