package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/confirm"
	"github.com/solcash/backend/internal/history"
	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
)

// EnqueueConfirmFunc schedules a background finality check for a submitted
// transfer. Typically a closure over river.Client.Insert, wired in main. A nil
// func disables the check (in-memory mode).
type EnqueueConfirmFunc func(ctx context.Context, args confirm.CheckTransferArgs) error

// Service runs the send flow: build, submit, record. Submission success is
// the sender's confirmation signal, so the history record is written
// immediately after Submit; the optional background check re-observes the
// transfer on the ledger afterwards.
type Service struct {
	client         ledgerclient.Client
	builder        *Builder
	history        *history.Ledger
	enqueueConfirm EnqueueConfirmFunc
	log            *slog.Logger
}

func NewService(client ledgerclient.Client, builder *Builder, hist *history.Ledger, enqueueConfirm EnqueueConfirmFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		client:         client,
		builder:        builder,
		history:        hist,
		enqueueConfirm: enqueueConfirm,
		log:            log,
	}
}

// Send builds and submits a transfer of amount from the owning wallet to the
// given recipient and appends the history record. Construction errors
// (invalid address, bad amount, unreachable ledger) surface before anything
// touches the ledger; a Submit failure surfaces untouched so the caller can
// decide whether to resubmit.
func (s *Service) Send(ctx context.Context, from models.Address, to string, amount decimal.Decimal, description string) (models.TransactionRecord, ledgerclient.Signature, error) {
	tx, ref, err := s.builder.Build(ctx, from, to, amount)
	if err != nil {
		return models.TransactionRecord{}, "", err
	}

	sig, err := s.client.Submit(ctx, tx)
	if err != nil {
		return models.TransactionRecord{}, "", fmt.Errorf("submit transfer: %w", err)
	}
	s.log.Info("transfer submitted", "signature", sig, "reference", ref, "amount", amount)

	rec := models.TransactionRecord{
		From: models.Party{
			Name:     string(from),
			Handle:   string(from),
			Verified: true,
		},
		To: models.Party{
			Name:   to,
			Handle: models.FieldUnset,
		},
		Description:     description,
		TransactionDate: time.Now(),
		Status:          models.RecordStatusCompleted,
		Amount:          amount,
		Source:          models.FieldUnset,
		Identifier:      string(sig),
	}
	rec, err = s.history.Append(ctx, rec)
	if err != nil {
		// The transfer is on the ledger; only the local record is missing.
		return models.TransactionRecord{}, sig, fmt.Errorf("transfer %s submitted but not recorded: %w", sig, err)
	}

	if s.enqueueConfirm != nil {
		args := confirm.CheckTransferArgs{
			Reference: ref,
			Signature: sig,
			To:        to,
			Amount:    amount.String(),
		}
		if err := s.enqueueConfirm(ctx, args); err != nil {
			s.log.Warn("enqueue finality check failed", "signature", sig, "error", err)
		}
	}
	return rec, sig, nil
}
