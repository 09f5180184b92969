package watch

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/solcash/backend/internal/models"
)

// ErrAlreadyWatching is returned when a second watch is started for a
// reference that already has one running.
var ErrAlreadyWatching = errors.New("reference is already being watched")

// OnDone receives the terminal result of a watch started through the hub.
type OnDone func(Result)

// Hub owns the set of active watches, one per reference. It is the single
// place watches are started from, which keeps a reference from ever being
// polled by two loops at once, and it carries each watch's completion
// callback so callers do not hold goroutines open on Done channels.
type Hub struct {
	watcher *Watcher
	log     *slog.Logger

	mu     sync.Mutex
	active map[models.ReferenceID]*Watch
}

func NewHub(watcher *Watcher, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		watcher: watcher,
		log:     log,
		active:  make(map[models.ReferenceID]*Watch),
	}
}

// Start begins a watch for req and registers it under its reference. onDone,
// if non-nil, runs exactly once with the terminal result, after the watch has
// been deregistered.
func (h *Hub) Start(req models.PaymentRequest, onDone OnDone, opts ...Option) (*Watch, error) {
	h.mu.Lock()
	if _, ok := h.active[req.Reference]; ok {
		h.mu.Unlock()
		return nil, ErrAlreadyWatching
	}
	wa := h.watcher.Start(req, opts...)
	h.active[req.Reference] = wa
	h.mu.Unlock()

	go func() {
		res := <-wa.Done()
		h.mu.Lock()
		delete(h.active, req.Reference)
		h.mu.Unlock()
		if onDone != nil {
			onDone(res)
		}
	}()
	return wa, nil
}

// Get returns the active watch for ref, if any.
func (h *Hub) Get(ref models.ReferenceID) (*Watch, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	wa, ok := h.active[ref]
	return wa, ok
}

// Cancel cancels the active watch for ref. Reports whether one was running.
func (h *Hub) Cancel(ref models.ReferenceID) bool {
	wa, ok := h.Get(ref)
	if !ok {
		return false
	}
	wa.Cancel()
	return true
}

// CancelAll cancels every active watch. Used at shutdown.
func (h *Hub) CancelAll() {
	h.mu.Lock()
	watches := make([]*Watch, 0, len(h.active))
	for _, wa := range h.active {
		watches = append(watches, wa)
	}
	h.mu.Unlock()
	for _, wa := range watches {
		wa.Cancel()
	}
}
