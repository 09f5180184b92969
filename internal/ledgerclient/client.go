package ledgerclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/models"
)

// LamportsPerSol is the ledger's base-unit scale: 1 SOL = 1e9 lamports.
const LamportsPerSol = 1_000_000_000

// Transient sentinels. ErrNotFoundYet is the expected steady state while a
// request waits for its payment and is never reported as an error; callers
// retry on their next tick. ErrUnavailable marks a transient infrastructure
// failure, also retried.
var (
	ErrNotFoundYet = errors.New("no transaction found for reference yet")
	ErrUnavailable = errors.New("ledger unavailable")
)

// Signature identifies a submitted transaction on the ledger.
type Signature string

// BlockHandle is a recent-block reference a transaction must carry to fall
// inside the ledger's validity window.
type BlockHandle string

// Confirmation levels reported by the ledger, weakest first.
const (
	StatusProcessed = "processed"
	StatusConfirmed = "confirmed"
	StatusFinalized = "finalized"
)

// Transaction is a transfer as the ledger sees it. Amounts travel in lamports;
// decimal conversion happens at the engine boundary.
type Transaction struct {
	Signature   Signature
	From        models.Address
	To          models.Address
	Lamports    int64
	Reference   models.ReferenceID
	RecentBlock BlockHandle
	Status      string
	BlockTime   time.Time
}

// Amount converts the lamport quantity back to an exact decimal.
func (t *Transaction) Amount() decimal.Decimal {
	return decimal.New(t.Lamports, -9)
}

// ToLamports converts a decimal amount into lamports. Fails on sub-lamport
// precision, which no ledger transfer can carry.
func ToLamports(amount decimal.Decimal) (int64, error) {
	scaled := amount.Shift(9)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s has sub-lamport precision", models.ErrInvalidAmount, amount)
	}
	return scaled.IntPart(), nil
}

// Client is the ledger capability the engine is handed by its environment.
// The engine never opens its own connection to a cluster.
type Client interface {
	// GetRecentBlockHandle returns a block handle for new transactions.
	GetRecentBlockHandle(ctx context.Context) (BlockHandle, error)
	// Submit sends a transaction and returns its signature.
	Submit(ctx context.Context, tx *Transaction) (Signature, error)
	// FindByReference returns the transaction tagged with ref, or ErrNotFoundYet.
	FindByReference(ctx context.Context, ref models.ReferenceID) (*Transaction, error)
	// GetTransactionDetail returns the ledger's copy of a transaction.
	GetTransactionDetail(ctx context.Context, sig Signature) (*Transaction, error)
}
