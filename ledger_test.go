package payments

import (
	"errors"
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func acc(client ClientID, available, held string, locked bool) Account {
	return Account{Client: client, Available: d(available), Held: d(held), Locked: locked}
}

// applyAll applies txs to l and fails the test on the first error.
func applyAll(t *testing.T, l *Ledger, txs ...Transaction) {
	t.Helper()
	for _, tx := range txs {
		if err := l.Apply(tx); err != nil {
			t.Fatalf("Apply(%v) unexpected error: %v", tx, err)
		}
	}
}

func TestLedger_Apply(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
		want []Account
	}{
		{
			name: "deposits add up",
			txs: []Transaction{
				NewDeposit(1, 1, d("1.0")),
				NewDeposit(1, 3, d("2.0")),
			},
			want: []Account{acc(1, "3", "0", false)},
		},
		{
			name: "dispute holds funds",
			txs: []Transaction{
				NewDeposit(1, 1, d("1.0")),
				NewDeposit(1, 3, d("2.0")),
				NewDispute(1, 1),
			},
			want: []Account{acc(1, "2", "1", false)},
		},
		{
			name: "chargeback locks account",
			txs: []Transaction{
				NewDeposit(1, 1, d("1.0")),
				NewDeposit(1, 3, d("2.0")),
				NewDispute(1, 1),
				NewChargeback(1, 1),
			},
			want: []Account{acc(1, "2", "0", true)},
		},
		{
			name: "resolve releases funds",
			txs: []Transaction{
				NewDeposit(1, 1, d("5")),
				NewDispute(1, 1),
				NewResolve(1, 1),
			},
			want: []Account{acc(1, "5", "0", false)},
		},
		{
			name: "disputed withdrawal only raises held funds",
			txs: []Transaction{
				NewDeposit(1, 1, d("100.0")),
				NewWithdrawal(1, 2, d("90.0")),
				NewDispute(1, 2),
			},
			want: []Account{acc(1, "10", "90", false)},
		},
		{
			name: "resolved withdrawal credits available funds",
			txs: []Transaction{
				NewDeposit(1, 1, d("100.0")),
				NewWithdrawal(1, 2, d("90.0")),
				NewDispute(1, 2),
				NewResolve(1, 2),
			},
			want: []Account{acc(1, "100", "0", false)},
		},
		{
			name: "withdrawal of all available funds",
			txs: []Transaction{
				NewDeposit(1, 1, d("1.2345")),
				NewWithdrawal(1, 2, d("1.2345")),
			},
			want: []Account{acc(1, "0", "0", false)},
		},
		{
			name: "chargeback after withdrawal goes negative",
			txs: []Transaction{
				NewDeposit(1, 1, d("10")),
				NewWithdrawal(1, 2, d("8")),
				NewDispute(1, 1),
				NewChargeback(1, 1),
			},
			want: []Account{acc(1, "-8", "0", true)},
		},
		{
			name: "dispute again after resolve",
			txs: []Transaction{
				NewDeposit(1, 1, d("3")),
				NewDispute(1, 1),
				NewResolve(1, 1),
				NewDispute(1, 1),
			},
			want: []Account{acc(1, "0", "3", false)},
		},
		{
			name: "accounts are independent and sorted",
			txs: []Transaction{
				NewDeposit(3, 1, d("1")),
				NewDeposit(1, 2, d("2")),
				NewDeposit(2, 3, d("3")),
				NewWithdrawal(1, 4, d("1.5")),
				NewDispute(2, 3),
			},
			want: []Account{
				acc(1, "0.5", "0", false),
				acc(2, "0", "3", false),
				acc(3, "1", "0", false),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			applyAll(t, l, tc.txs...)

			got := slices.Collect(l.Accounts())
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Accounts() mismatch (-want +got):\n%s", diff)
			}
			for _, a := range got {
				if !a.Total().Equal(a.Available.Add(a.Held)) {
					t.Errorf("client %d: total %s != available %s + held %s", a.Client, a.Total(), a.Available, a.Held)
				}
			}
		})
	}
}

func TestLedger_Apply_Rejected(t *testing.T) {
	locked := []Transaction{
		NewDeposit(1, 1, d("1.0")),
		NewDeposit(1, 3, d("2.0")),
		NewDispute(1, 1),
		NewChargeback(1, 1),
	}

	testCases := []struct {
		name    string
		setup   []Transaction
		tx      Transaction
		wantErr error
		want    []Account
	}{
		{
			name:    "deposit without amount",
			tx:      Transaction{Type: TxDeposit, Client: 1, ID: 1},
			wantErr: ErrMalformed,
			want:    []Account{acc(1, "0", "0", false)},
		},
		{
			name:    "withdrawal without amount",
			setup:   []Transaction{NewDeposit(1, 1, d("4"))},
			tx:      Transaction{Type: TxWithdrawal, Client: 1, ID: 2},
			wantErr: ErrMalformed,
			want:    []Account{acc(1, "4", "0", false)},
		},
		{
			name:    "duplicate deposit",
			setup:   []Transaction{NewDeposit(1, 1, d("1"))},
			tx:      NewDeposit(1, 1, d("5")),
			wantErr: ErrDuplicateTransactionID,
			want:    []Account{acc(1, "1", "0", false)},
		},
		{
			name:    "withdrawal reusing a deposit id",
			setup:   []Transaction{NewDeposit(1, 1, d("5"))},
			tx:      NewWithdrawal(1, 1, d("2")),
			wantErr: ErrDuplicateTransactionID,
			want:    []Account{acc(1, "5", "0", false)},
		},
		{
			name:    "duplicate from another client creates no account",
			setup:   []Transaction{NewDeposit(1, 1, d("1"))},
			tx:      NewDeposit(2, 1, d("5")),
			wantErr: ErrDuplicateTransactionID,
			want:    []Account{acc(1, "1", "0", false)},
		},
		{
			name:    "withdrawal without funds",
			tx:      NewWithdrawal(1, 1, d("50.0")),
			wantErr: ErrInsufficientFunds,
			want:    []Account{acc(1, "0", "0", false)},
		},
		{
			name: "withdrawal of held funds",
			setup: []Transaction{
				NewDeposit(1, 1, d("10")),
				NewDeposit(1, 2, d("5")),
				NewDispute(1, 1),
			},
			tx:      NewWithdrawal(1, 3, d("6")),
			wantErr: ErrInsufficientFunds,
			want:    []Account{acc(1, "5", "10", false)},
		},
		{
			name:    "dispute of unknown transaction",
			setup:   []Transaction{NewDeposit(1, 1, d("1"))},
			tx:      NewDispute(1, 5),
			wantErr: ErrTransactionNotFound,
			want:    []Account{acc(1, "1", "0", false)},
		},
		{
			name:    "dispute before any deposit",
			tx:      NewDispute(7, 1),
			wantErr: ErrTransactionNotFound,
			want:    []Account{acc(7, "0", "0", false)},
		},
		{
			name:    "dispute of another client's transaction",
			setup:   []Transaction{NewDeposit(1, 1, d("1.0"))},
			tx:      NewDispute(2, 1),
			wantErr: ErrUnauthorized,
			want:    []Account{acc(1, "1", "0", false), acc(2, "0", "0", false)},
		},
		{
			name: "chargeback of another client's transaction",
			setup: []Transaction{
				NewDeposit(1, 1, d("1.0")),
				NewDispute(1, 1),
			},
			tx:      NewChargeback(2, 1),
			wantErr: ErrUnauthorized,
			want:    []Account{acc(1, "0", "1", false), acc(2, "0", "0", false)},
		},
		{
			name: "dispute twice",
			setup: []Transaction{
				NewDeposit(1, 1, d("1")),
				NewDispute(1, 1),
			},
			tx:      NewDispute(1, 1),
			wantErr: ErrAlreadyDisputed,
			want:    []Account{acc(1, "0", "1", false)},
		},
		{
			name:    "resolve without dispute",
			setup:   []Transaction{NewDeposit(1, 1, d("1"))},
			tx:      NewResolve(1, 1),
			wantErr: ErrNotDisputed,
			want:    []Account{acc(1, "1", "0", false)},
		},
		{
			name:    "chargeback without dispute",
			setup:   []Transaction{NewDeposit(1, 1, d("1"))},
			tx:      NewChargeback(1, 1),
			wantErr: ErrNotDisputed,
			want:    []Account{acc(1, "1", "0", false)},
		},
		{
			name: "resolve twice",
			setup: []Transaction{
				NewDeposit(1, 1, d("1")),
				NewDispute(1, 1),
				NewResolve(1, 1),
			},
			tx:      NewResolve(1, 1),
			wantErr: ErrNotDisputed,
			want:    []Account{acc(1, "1", "0", false)},
		},
		{
			name:    "resolve of unknown transaction",
			tx:      NewResolve(1, 1),
			wantErr: ErrTransactionNotFound,
			want:    []Account{acc(1, "0", "0", false)},
		},
		{
			name:    "deposit on locked account",
			setup:   locked,
			tx:      NewDeposit(1, 4, d("5")),
			wantErr: ErrAccountLocked,
			want:    []Account{acc(1, "2", "0", true)},
		},
		{
			name:    "dispute on locked account",
			setup:   locked,
			tx:      NewDispute(1, 3),
			wantErr: ErrAccountLocked,
			want:    []Account{acc(1, "2", "0", true)},
		},
		{
			name:    "locked account is checked before the amount",
			setup:   locked,
			tx:      Transaction{Type: TxWithdrawal, Client: 1, ID: 9},
			wantErr: ErrAccountLocked,
			want:    []Account{acc(1, "2", "0", true)},
		},
		{
			name:    "duplicate id is checked before the lock",
			setup:   locked,
			tx:      NewDeposit(1, 3, d("1")),
			wantErr: ErrDuplicateTransactionID,
			want:    []Account{acc(1, "2", "0", true)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			applyAll(t, l, tc.setup...)

			err := l.Apply(tc.tx)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Apply(%v) error = %v, want %v", tc.tx, err, tc.wantErr)
			}
			var txErr *TransactionError
			if !errors.As(err, &txErr) {
				t.Fatalf("Apply(%v) error %T is not a *TransactionError", tc.tx, err)
			}
			if !txErr.Tx.Equal(tc.tx) {
				t.Errorf("TransactionError.Tx = %v, want %v", txErr.Tx, tc.tx)
			}

			if diff := cmp.Diff(tc.want, slices.Collect(l.Accounts())); diff != "" {
				t.Errorf("Accounts() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLedger_Apply_DuplicateKeepsOriginal(t *testing.T) {
	l := NewLedger()
	applyAll(t, l, NewDeposit(1, 1, d("1")))

	if err := l.Apply(NewWithdrawal(2, 1, d("9"))); !errors.Is(err, ErrDuplicateTransactionID) {
		t.Fatalf("Apply() error = %v, want %v", err, ErrDuplicateTransactionID)
	}

	got, ok := l.Transaction(1)
	if !ok {
		t.Fatal("Transaction(1) not found")
	}
	want := StoredTx{Type: TxDeposit, Client: 1, Amount: d("1")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transaction(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_Apply_MalformedIsNotStored(t *testing.T) {
	l := NewLedger()
	if err := l.Apply(Transaction{Type: TxDeposit, Client: 1, ID: 1}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Apply() error = %v, want %v", err, ErrMalformed)
	}
	if _, ok := l.Transaction(1); ok {
		t.Error("malformed deposit was stored")
	}
	// The id is still free.
	applyAll(t, l, NewDeposit(1, 1, d("2")))
}

func TestLedger_Apply_Indisputable(t *testing.T) {
	l := NewLedger()
	l.transactions[7] = &StoredTx{Type: TxDispute, Client: 1, Amount: d("1")}

	if err := l.Apply(NewDispute(1, 7)); !errors.Is(err, ErrIndisputable) {
		t.Errorf("Apply() error = %v, want %v", err, ErrIndisputable)
	}
}

func TestLedger_Apply_LockIsFinal(t *testing.T) {
	l := NewLedger()
	applyAll(t, l,
		NewDeposit(1, 1, d("10")),
		NewDeposit(1, 2, d("5")),
		NewDispute(1, 1),
		NewDispute(1, 2),
		NewChargeback(1, 1),
	)

	for _, tx := range []Transaction{
		NewDeposit(1, 3, d("1")),
		NewWithdrawal(1, 4, d("1")),
		NewResolve(1, 2),
		NewChargeback(1, 2),
		NewDispute(1, 1),
	} {
		if err := l.Apply(tx); !errors.Is(err, ErrAccountLocked) {
			t.Errorf("Apply(%v) error = %v, want %v", tx, err, ErrAccountLocked)
		}
	}

	got, _ := l.Account(1)
	if want := acc(1, "0", "5", true); !got.Equal(want) {
		t.Errorf("Account(1) = %+v, want %+v", got, want)
	}
}

func TestLedger_DepositThenWithdrawal(t *testing.T) {
	l := NewLedger()
	applyAll(t, l, NewDeposit(1, 1, d("12.5")))
	before, _ := l.Account(1)

	applyAll(t, l, NewDeposit(1, 2, d("3.3333")), NewWithdrawal(1, 3, d("3.3333")))
	after, _ := l.Account(1)

	if !after.Available.Equal(before.Available) {
		t.Errorf("available = %s, want %s", after.Available, before.Available)
	}
}

type ledgerState struct {
	Accounts     map[ClientID]Account
	Transactions map[TxID]StoredTx
}

func snapshot(l *Ledger) ledgerState {
	s := ledgerState{
		Accounts:     make(map[ClientID]Account),
		Transactions: make(map[TxID]StoredTx),
	}
	for id, a := range l.accounts {
		s.Accounts[id] = *a
	}
	for id, tx := range l.transactions {
		s.Transactions[id] = *tx
	}
	return s
}

// TestLedger_Apply_RejectionLeavesStateUnchanged replays random logs and checks
// that no rejected transaction changes the ledger, apart from creating an
// empty account.
func TestLedger_Apply_RejectionLeavesStateUnchanged(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	amounts := []string{"0.0001", "1", "2.5", "10", "99.9999"}
	types := []TxType{TxDeposit, TxDeposit, TxWithdrawal, TxDispute, TxResolve, TxChargeback}

	for run := range 50 {
		l := NewLedger()
		for range 200 {
			tx := Transaction{
				Type:   types[r.IntN(len(types))],
				Client: ClientID(1 + r.IntN(3)),
				ID:     TxID(1 + r.IntN(40)),
			}
			if tx.Type.Stored() && r.IntN(20) > 0 {
				tx.Amount = decimal.NewNullDecimal(d(amounts[r.IntN(len(amounts))]))
			}

			before := snapshot(l)
			err := l.Apply(tx)
			if err == nil {
				continue
			}
			after := snapshot(l)
			if _, existed := before.Accounts[tx.Client]; !existed {
				if a := after.Accounts[tx.Client]; !a.Equal(NewAccount(tx.Client)) {
					t.Fatalf("run %d: rejected %v created a non empty account %+v", run, tx, a)
				}
				delete(after.Accounts, tx.Client)
			}
			if diff := cmp.Diff(before, after); diff != "" {
				t.Fatalf("run %d: rejected %v (%v) changed the ledger (-before +after):\n%s", run, tx, err, diff)
			}
		}

		for a := range l.Accounts() {
			if !a.Total().Equal(a.Available.Add(a.Held)) {
				t.Errorf("run %d: client %d total drifted", run, a.Client)
			}
		}
		if got, want := l.Len(), len(slices.Collect(maps.Keys(l.accounts))); got != want {
			t.Errorf("run %d: Len() = %d, want %d", run, got, want)
		}
	}
}
