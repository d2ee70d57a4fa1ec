package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/payments"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the stderr logger, replaced in tests.
var newLogger = func() (*zap.Logger, error) {
	return buildLogger(*logLevel)
}

// buildLogger returns a JSON logger writing to stderr at the given level.
func buildLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(strings.TrimSpace(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	// every rejection must be reported, never sampled out.
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// logRejection logs a record that was not applied to the ledger.
func logRejection(log *zap.Logger, rej payments.Rejection) {
	fields := []zap.Field{zap.Int("line", rej.Line)}
	var txErr *payments.TransactionError
	if errors.As(rej.Err, &txErr) {
		fields = append(fields,
			zap.String("type", string(rej.Tx.Type)),
			zap.Uint16("client", uint16(rej.Tx.Client)),
			zap.Uint32("tx", uint32(rej.Tx.ID)),
			zap.NamedError("reason", txErr.Err),
		)
		log.Warn("rejected transaction", fields...)
		return
	}
	log.Warn("unreadable record", append(fields, zap.Error(rej.Err))...)
}
