// Package payments implements a payments engine that replays a log of client
// transactions and computes the final state of every client account.
//
// The log is a sequence of records, each one of:
//   - deposit: credits the client's available funds.
//   - withdrawal: debits the client's available funds, if there is enough.
//   - dispute: a claim that a past deposit or withdrawal should be reversed.
//     The amount of the referenced transaction is moved to held funds.
//   - resolve: ends a dispute, releasing the held funds to available funds.
//   - chargeback: ends a dispute by reversing the transaction. The held funds
//     are removed and the account is locked for good.
//
// The Ledger is the single point of mutation: Ledger.Apply applies one record
// or rejects it with a *TransactionError, leaving balances untouched. What to do
// with a rejected record is up to the caller; Ledger.Replay streams a whole log
// from a Decoder and either skips or halts on rejections.
//
// Amounts are exact decimals with four fractional digits. Logs are read and
// written as CSV (type,client,tx,amount) or JSONL.
//
// This package is the foundation of the `pe` command-line tool.
package payments
