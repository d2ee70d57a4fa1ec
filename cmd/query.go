package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/payments"
	"github.com/google/subcommands"
)

type queryCmd struct {
	format string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression against the final accounts" }
func (*queryCmd) Usage() string {
	return `pe query [-f csv|jsonl] <jsonpath> [<log>]

  Replays the log, then evaluates the JSONPath expression against the JSON
  array of final accounts (see pe process -o json) and prints the result.

Usage Examples:
# Lists the locked clients.
$ pe query '$[?(@.locked)].client' transactions.csv
# Total funds of client 2.
$ pe query '$[?(@.client == 2)].total' transactions.csv
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "f", "", "Input format (csv, jsonl). Inferred from the file extension by default.")
}

func (c *queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: missing JSONPath expression")
		return subcommands.ExitUsageError
	}
	expr := f.Arg(0)

	log, err := newLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer log.Sync()

	res, err := replayLog(log, f.Args()[1:], c.format, payments.SkipInvalid)
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not read log: %v\n", err)
		return subcommands.ExitFailure
	}

	got, err := queryAccounts(res.Ledger, expr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not encode result: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, string(out))
	return subcommands.ExitSuccess
}

// queryAccounts evaluates expr against the JSON document of the ledger's accounts.
func queryAccounts(l *payments.Ledger, expr string) (any, error) {
	var buf bytes.Buffer
	if err := payments.EncodeAccountsJSON(&buf, l.Accounts()); err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, err
	}
	got, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	return got, nil
}
