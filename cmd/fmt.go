package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/etnz/payments"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type fmtCmd struct {
	format string
	to     string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats a transaction log into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `pe fmt [-f csv|jsonl] [-to csv|jsonl] [<log>]

  Decodes every record of the log and writes it back on stdout in canonical
  form: lowercase types, amounts rounded to four decimal places, no comments
  nor blank lines. No ledger rule is applied, so rejected transactions are kept.
  Stops at the first record that cannot be decoded.

Usage Examples:
# Converts a csv log into jsonl.
$ pe fmt -to jsonl transactions.csv > transactions.jsonl
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "f", "", "Input format (csv, jsonl). Inferred from the file extension by default.")
	f.StringVar(&c.to, "to", "", "Output format (csv, jsonl). Defaults to the input format.")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log, err := newLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer log.Sync()

	r, name, closeLog, err := openLog(f.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closeLog()

	from, err := inputFormat(c.format, name)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to := c.to
	if to == "" {
		to = from
	}
	if to != formatCSV && to != formatJSONL {
		fmt.Fprintf(stderr, "Error: unknown output format %q, want csv or jsonl\n", to)
		return subcommands.ExitUsageError
	}

	dec, err := newDecoder(from, name, r)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	n, err := reencode(dec, to)
	if err != nil {
		fmt.Fprintf(stderr, "Error formatting %s: %v\n", displayName(name), err)
		return subcommands.ExitFailure
	}
	log.Info("log formatted", zap.String("input", displayName(name)), zap.String("to", to), zap.Int("records", n))
	return subcommands.ExitSuccess
}

// reencode copies every record of dec to stdout in the given format, and
// returns the number of records written.
func reencode(dec payments.Decoder, to string) (int, error) {
	var encode func(payments.Transaction) error
	flush := func() error { return nil }
	if to == formatCSV {
		enc := payments.NewCSVEncoder(stdout)
		encode, flush = enc.Encode, enc.Flush
	} else {
		encode = func(tx payments.Transaction) error { return payments.EncodeTransaction(stdout, tx) }
	}

	n := 0
	for {
		tx, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if err := encode(tx); err != nil {
			return n, err
		}
		n++
	}
	return n, flush()
}
