package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
)

// DefaultPollInterval between ledger queries.
const DefaultPollInterval = 500 * time.Millisecond

// State of a payment watch. Matched, Failed and Cancelled are terminal.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateMatched
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateMatched:
		return "matched"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome of a finished watch.
type Outcome int

const (
	// OutcomeMatched: a transaction tagged with the reference arrived and
	// passed validation.
	OutcomeMatched Outcome = iota
	// OutcomeValidationFailed: a transaction exists at the reference but does
	// not satisfy the request. Permanent; the reference is single-use and the
	// ledger will never produce a different transaction for it.
	OutcomeValidationFailed
	// OutcomeCancelled: the caller cancelled the watch.
	OutcomeCancelled
	// OutcomeExpired: the optional max duration elapsed before a match.
	OutcomeExpired
)

// Result is the single terminal event a watch produces on its Done channel.
type Result struct {
	Outcome     Outcome
	Request     models.PaymentRequest
	Transaction *ledgerclient.Transaction // set when Outcome is OutcomeMatched
	Err         error                     // set when Outcome is OutcomeValidationFailed
}

// Validator decides whether a found transaction satisfies the request.
// A nil return is a match. Errors wrapping ledgerclient.ErrUnavailable are
// transient and retried on the next tick; any other error is a permanent
// mismatch for this reference.
type Validator interface {
	Validate(ctx context.Context, req models.PaymentRequest, candidate *ledgerclient.Transaction) error
}

// Option configures a single watch.
type Option func(*watchConfig)

type watchConfig struct {
	interval    time.Duration
	maxDuration time.Duration
}

// WithPollInterval overrides the tick interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *watchConfig) { c.interval = d }
}

// WithMaxDuration bounds the watch's total lifetime. The baseline is
// indefinite: a watch polls until matched, failed, or cancelled.
func WithMaxDuration(d time.Duration) Option {
	return func(c *watchConfig) { c.maxDuration = d }
}

// Watcher starts payment watches against a ledger client.
type Watcher struct {
	client    ledgerclient.Client
	validator Validator
	log       *slog.Logger
}

func New(client ledgerclient.Client, validator Validator, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{client: client, validator: validator, log: log}
}

// Watch is one running poll loop for one reference.
type Watch struct {
	request models.PaymentRequest
	state   atomic.Int32
	cancel  context.CancelFunc
	done    chan Result

	// queryMu serializes Cancel against query issuance: the loop issues a
	// ledger query only while holding it with a live context, and Cancel
	// acquires it after cancelling, so no query starts after Cancel returns.
	queryMu sync.Mutex
}

// Start transitions the watch from idle to polling and begins issuing one
// FindByReference query per tick. Exactly one query is outstanding at a time;
// the next tick is not acted on until the previous result has resolved, so a
// slow ledger never accumulates concurrent polls.
func (w *Watcher) Start(req models.PaymentRequest, opts ...Option) *Watch {
	cfg := watchConfig{interval: DefaultPollInterval}
	for _, o := range opts {
		o(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.maxDuration > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), cfg.maxDuration)
	}
	wa := &Watch{
		request: req,
		cancel:  cancel,
		done:    make(chan Result, 1),
	}
	wa.state.Store(int32(StatePolling))
	go w.run(ctx, wa, cfg)
	return wa
}

func (w *Watcher) run(ctx context.Context, wa *Watch, cfg watchConfig) {
	defer wa.cancel()

	log := w.log.With("reference", wa.request.Reference)
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wa.finishStopped(ctx, log)
			return
		case <-ticker.C:
		}

		wa.queryMu.Lock()
		if ctx.Err() != nil {
			wa.queryMu.Unlock()
			wa.finishStopped(ctx, log)
			return
		}
		tx, err := w.client.FindByReference(ctx, wa.request.Reference)
		wa.queryMu.Unlock()

		if ctx.Err() != nil {
			// Cancelled while the query was in flight; drop whatever it returned.
			wa.finishStopped(ctx, log)
			return
		}
		switch {
		case errors.Is(err, ledgerclient.ErrNotFoundYet):
			// Expected steady state before the payment arrives.
			continue
		case err != nil:
			log.Debug("ledger query failed, retrying next tick", "error", err)
			continue
		}

		verr := w.validator.Validate(ctx, wa.request, tx)
		if verr == nil {
			log.Info("payment matched", "signature", tx.Signature, "amount", tx.Amount())
			wa.state.Store(int32(StateMatched))
			wa.deliver(Result{Outcome: OutcomeMatched, Request: wa.request, Transaction: tx})
			return
		}
		if errors.Is(verr, ledgerclient.ErrUnavailable) {
			log.Debug("validation needs the ledger, retrying next tick", "error", verr)
			continue
		}
		log.Error("transaction failed validation, stopping watch", "signature", tx.Signature, "error", verr)
		wa.state.Store(int32(StateFailed))
		wa.deliver(Result{Outcome: OutcomeValidationFailed, Request: wa.request, Err: verr})
		return
	}
}

// finishStopped records the terminal state for a watch ended by cancellation
// or by its max duration.
func (wa *Watch) finishStopped(ctx context.Context, log *slog.Logger) {
	outcome := OutcomeCancelled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		outcome = OutcomeExpired
		log.Info("watch expired without a matching transaction")
	}
	wa.state.Store(int32(StateCancelled))
	wa.deliver(Result{Outcome: outcome, Request: wa.request})
}

// deliver publishes the one-shot result and closes the channel. Only the run
// goroutine calls it, exactly once.
func (wa *Watch) deliver(res Result) {
	wa.done <- res
	close(wa.done)
}

// Cancel stops the watch. After Cancel returns no further ledger queries are
// issued; a query already in flight is left to resolve and its result is
// discarded. Safe to call more than once and after the watch has finished.
func (wa *Watch) Cancel() {
	wa.cancel()
	// Wait out any query being issued right now so the no-further-queries
	// guarantee holds from the moment Cancel returns.
	wa.queryMu.Lock()
	defer wa.queryMu.Unlock()
}

// State reports the watch's current state.
func (wa *Watch) State() State {
	return State(wa.state.Load())
}

// Done yields the watch's single terminal Result.
func (wa *Watch) Done() <-chan Result {
	return wa.done
}

// Request returns the request this watch observes.
func (wa *Watch) Request() models.PaymentRequest {
	return wa.request
}
