package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/payments"
	"github.com/etnz/payments/renderer"
	"github.com/google/subcommands"
)

// Output formats of the process command.
const (
	outputCSV      = "csv"
	outputJSON     = "json"
	outputMarkdown = "md"
)

type processCmd struct {
	format   string
	output   string
	strict   bool
	currency string
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "replay a transaction log and print the final accounts" }
func (*processCmd) Usage() string {
	return `pe process [-f csv|jsonl] [-o csv|json|md] [-strict] [-currency <code>] [<log>]

  Replays every transaction of the log, in order, against an empty ledger and
  prints the final state of every client account, sorted by client.

  Invalid records and rejected transactions are reported on stderr and
  skipped, unless -strict is set, in which case the first one aborts.
  The log is read from stdin if no file is given.

Usage Examples:
$ pe process transactions.csv > accounts.csv
$ pe process -o md -currency USD transactions.csv
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "f", "", "Input format (csv, jsonl). Inferred from the file extension by default.")
	f.StringVar(&c.output, "o", outputCSV, "Output format (csv, json, md).")
	f.BoolVar(&c.strict, "strict", false, "Abort on the first invalid record or rejected transaction.")
	f.StringVar(&c.currency, "currency", envOr("PAYMENTS_CURRENCY", ""), "ISO 4217 currency code used to format amounts in the md output. Defaults to $PAYMENTS_CURRENCY.")
}

func (c *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.output {
	case outputCSV, outputJSON, outputMarkdown:
	default:
		fmt.Fprintf(stderr, "Error: unknown output format %q, want csv, json or md\n", c.output)
		return subcommands.ExitUsageError
	}

	log, err := newLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer log.Sync()

	policy := payments.SkipInvalid
	if c.strict {
		policy = payments.HaltOnError
	}

	res, err := replayLog(log, f.Args(), c.format, policy)
	if err != nil {
		var txErr *payments.TransactionError
		var perr *payments.ParseError
		if errors.As(err, &txErr) || errors.As(err, &perr) {
			fmt.Fprintf(stderr, "Error: replay aborted: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: could not read log: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	accounts := res.Ledger.Accounts()
	switch c.output {
	case outputJSON:
		err = payments.EncodeAccountsJSON(stdout, accounts)
	case outputMarkdown:
		printMarkdown(renderer.RenderAccounts(renderer.NewAccounts(res.Source, accounts, c.currency)))
	default:
		err = payments.EncodeAccountsCSV(stdout, accounts)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not write accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
