package confirm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
	"github.com/solcash/backend/internal/watch"
)

// CheckTransferArgs identifies a submitted outbound transfer whose on-ledger
// confirmation should be re-observed in the background.
type CheckTransferArgs struct {
	Reference models.ReferenceID     `json:"reference"`
	Signature ledgerclient.Signature `json:"signature"`
	To        string                 `json:"to"`
	Amount    string                 `json:"amount"`
}

func (CheckTransferArgs) Kind() string { return "check_transfer_finality" }

const (
	checkInterval = 2 * time.Second
	checkWindow   = 90 * time.Second
)

// CheckTransferWorker re-observes a submitted transfer through the payment
// watcher. Submission success already completed the send flow; this job is
// the safety net that notices a transfer which never reaches confirmation or
// lands with the wrong shape, and surfaces it as a job failure so River
// retries and ultimately records it.
type CheckTransferWorker struct {
	river.WorkerDefaults[CheckTransferArgs]
	watcher  *watch.Watcher
	log      *slog.Logger
	interval time.Duration
	window   time.Duration
}

func NewCheckTransferWorker(watcher *watch.Watcher, log *slog.Logger) *CheckTransferWorker {
	if log == nil {
		log = slog.Default()
	}
	return &CheckTransferWorker{
		watcher:  watcher,
		log:      log,
		interval: checkInterval,
		window:   checkWindow,
	}
}

func (w *CheckTransferWorker) Work(ctx context.Context, job *river.Job[CheckTransferArgs]) error {
	args := job.Args
	amount, err := decimal.NewFromString(args.Amount)
	if err != nil {
		return fmt.Errorf("bad amount %q in job args: %w", args.Amount, err)
	}
	to, err := models.ParseAddress(args.To)
	if err != nil {
		return fmt.Errorf("bad recipient in job args: %w", err)
	}

	// The outbound transfer is observed with the same machinery as an incoming
	// request: recipient, amount and the reference it was tagged with.
	req := models.PaymentRequest{Recipient: to, Amount: amount, Reference: args.Reference}
	wa := w.watcher.Start(req,
		watch.WithPollInterval(w.interval),
		watch.WithMaxDuration(w.window),
	)
	defer wa.Cancel()

	select {
	case res := <-wa.Done():
		switch res.Outcome {
		case watch.OutcomeMatched:
			w.log.Info("sent transfer confirmed on ledger",
				"signature", args.Signature, "reference", args.Reference)
			return nil
		case watch.OutcomeValidationFailed:
			return fmt.Errorf("submitted transfer %s failed validation: %w", args.Signature, res.Err)
		default:
			return fmt.Errorf("transfer %s not confirmed within %s", args.Signature, w.window)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
