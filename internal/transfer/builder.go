package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
)

// ErrLedgerUnreachable marks a failed recent-block fetch at build time.
var ErrLedgerUnreachable = errors.New("ledger unreachable")

// Builder constructs outbound reference-tagged transfers. It performs no
// retries and no submission; Submit is the caller's separate step, retryable
// on its own.
type Builder struct {
	client ledgerclient.Client
}

func NewBuilder(client ledgerclient.Client) *Builder {
	return &Builder{client: client}
}

// Build fetches a recent block handle for the validity window, converts the
// amount to lamports and attaches a fresh reference as the transfer's
// non-signing, non-writable tag, so the sent payment is discoverable through
// FindByReference exactly like a requested one.
func (b *Builder) Build(ctx context.Context, from models.Address, to string, amount decimal.Decimal) (*ledgerclient.Transaction, models.ReferenceID, error) {
	toAddr, err := models.ParseAddress(to)
	if err != nil {
		return nil, "", err
	}
	if !amount.IsPositive() {
		return nil, "", fmt.Errorf("%w: %s", models.ErrInvalidAmount, amount)
	}
	lamports, err := ledgerclient.ToLamports(amount)
	if err != nil {
		return nil, "", err
	}
	block, err := b.client.GetRecentBlockHandle(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrLedgerUnreachable, err)
	}
	ref := models.NewReferenceID()
	return &ledgerclient.Transaction{
		From:        from,
		To:          toAddr,
		Lamports:    lamports,
		Reference:   ref,
		RecentBlock: block,
	}, ref, nil
}
