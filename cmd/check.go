package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/payments"
	"github.com/etnz/payments/renderer"
	"github.com/google/subcommands"
)

type checkCmd struct {
	format string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "list the records of a log that would be rejected" }
func (*checkCmd) Usage() string {
	return `pe check [-f csv|jsonl] [<log>]

  Replays the log and reports every record that is not applied, with its
  line and the reason. Exits with status 1 if there is any.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "f", "", "Input format (csv, jsonl). Inferred from the file extension by default.")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log, err := newLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer log.Sync()

	res, err := replayLog(log, f.Args(), c.format, payments.SkipInvalid)
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not read log: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderRejections(renderer.NewRejections(res.Source, res.Stats, res.Rejections)))
	if len(res.Rejections) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
