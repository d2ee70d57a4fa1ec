// Package cmd implements the CLI application to replay payments logs.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/payments"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Commands lists the pe subcommands.
var Commands = []subcommands.Command{
	&processCmd{},
	&checkCmd{},
	&fmtCmd{},
	&queryCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	for _, cmd := range Commands {
		c.Register(cmd, "payments")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var logLevel = flag.String("log-level", envOr("PAYMENTS_LOG_LEVEL", "info"), "Log level on stderr (debug, info, warn, error). Defaults to $PAYMENTS_LOG_LEVEL.")
var rawMarkdown = flag.Bool("raw", false, "Print markdown reports as is, without terminal rendering.")

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// envOr returns the trimmed value of the environment variable, or def if it is empty.
func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// Input formats.
const (
	formatCSV   = "csv"
	formatJSONL = "jsonl"
)

// inputFormat returns the format of the log, explicit or inferred from its name.
func inputFormat(format, name string) (string, error) {
	switch format {
	case formatCSV, formatJSONL:
		return format, nil
	case "":
		switch strings.ToLower(filepath.Ext(name)) {
		case ".jsonl", ".ndjson", ".json":
			return formatJSONL, nil
		default:
			return formatCSV, nil
		}
	default:
		return "", fmt.Errorf("unknown input format %q, want csv or jsonl", format)
	}
}

// openLog opens the transaction log named by args, or stdin if there is none
// or it is "-". The caller must call closeFn.
func openLog(args []string) (r io.Reader, name string, closeFn func() error, err error) {
	if len(args) > 1 {
		return nil, "", nil, errors.New("too many arguments, want a single log file")
	}
	if len(args) == 0 || args[0] == "-" {
		return stdin, "", func() error { return nil }, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", nil, fmt.Errorf("could not open log: %w", err)
	}
	return f, args[0], f.Close, nil
}

// newDecoder returns a decoder for the log format.
func newDecoder(format, name string, r io.Reader) (payments.Decoder, error) {
	format, err := inputFormat(format, name)
	if err != nil {
		return nil, err
	}
	if format == formatJSONL {
		return payments.NewJSONLDecoder(r), nil
	}
	return payments.NewCSVDecoder(r), nil
}

// replayResult is the outcome of replaying a log.
type replayResult struct {
	Source     string
	Ledger     *payments.Ledger
	Stats      payments.Stats
	Rejections []payments.Rejection
}

// replayLog replays the log named by args into a new ledger. Every rejected
// record is logged and collected. The returned error is either a failure to
// read the log, or the first rejection with HaltOnError.
func replayLog(log *zap.Logger, args []string, format string, policy payments.Policy) (*replayResult, error) {
	r, name, closeLog, err := openLog(args)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	dec, err := newDecoder(format, name, r)
	if err != nil {
		return nil, err
	}

	res := &replayResult{Source: name, Ledger: payments.NewLedger()}
	res.Stats, err = res.Ledger.Replay(dec, policy, func(rej payments.Rejection) {
		logRejection(log, rej)
		res.Rejections = append(res.Rejections, rej)
	})
	log.Info("replay done",
		zap.String("input", displayName(name)),
		zap.Stringer("policy", policy),
		zap.Int("applied", res.Stats.Applied),
		zap.Int("rejected", res.Stats.Rejected),
		zap.Int("accounts", res.Ledger.Len()),
	)
	return res, err
}

func displayName(name string) string {
	if name == "" {
		return "stdin"
	}
	return name
}
