package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/history"
	"github.com/solcash/backend/internal/models"
	"github.com/solcash/backend/internal/watch"
)

const recordTimeout = 5 * time.Second

type CreateRequestBody struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Label     string `json:"label"`
	Message   string `json:"message"`
}

type RequestResponse struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
	State     string `json:"state"`
}

// Handler exposes the receive flow: create a payment request, watch the
// ledger for it, and report or cancel the watch. The request URI in the
// response is what the client renders as a scannable code.
type Handler struct {
	Hub          *watch.Hub
	History      *history.Ledger
	PollInterval time.Duration
	Log          *slog.Logger
}

func NewHandler(hub *watch.Hub, hist *history.Ledger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Hub: hub, History: hist, Log: log}
}

func (h *Handler) pollInterval() time.Duration {
	if h.PollInterval > 0 {
		return h.PollInterval
	}
	return watch.DefaultPollInterval
}

// CreateRequest handles POST /v1/requests: builds a fresh PaymentRequest and
// starts its watch.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body CreateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		return
	}
	req, err := models.NewPaymentRequest(body.Recipient, amount, body.Label, body.Message)
	switch {
	case errors.Is(err, models.ErrInvalidAddress), errors.Is(err, models.ErrInvalidAmount):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	case err != nil:
		h.Log.Error("create payment request", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	wa, err := h.Hub.Start(req, h.recordOutcome, watch.WithPollInterval(h.pollInterval()))
	if err != nil {
		// Only reachable if a freshly generated reference collides, which the
		// reference generator rules out.
		h.Log.Error("start watch", "reference", req.Reference, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(RequestResponse{
		Reference: req.Reference.String(),
		URL:       req.RequestURI(),
		State:     wa.State().String(),
	})
}

// GetRequest handles GET /v1/requests/{reference}: reports the watch state.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	ref := models.ReferenceID(r.PathValue("reference"))
	wa, ok := h.Hub.Get(ref)
	if !ok {
		http.Error(w, `{"error":"no active watch for reference"}`, http.StatusNotFound)
		return
	}
	req := wa.Request()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RequestResponse{
		Reference: ref.String(),
		URL:       req.RequestURI(),
		State:     wa.State().String(),
	})
}

// CancelRequest handles DELETE /v1/requests/{reference}.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	ref := models.ReferenceID(r.PathValue("reference"))
	if !h.Hub.Cancel(ref) {
		http.Error(w, `{"error":"no active watch for reference"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordOutcome runs when a watch finishes. A matched payment is appended to
// the history; the record is derived from the validated on-ledger transaction
// rather than the original request, so the persisted amount and parties are
// the ledger's own.
func (h *Handler) recordOutcome(res watch.Result) {
	switch res.Outcome {
	case watch.OutcomeMatched:
	case watch.OutcomeValidationFailed:
		h.Log.Error("payment request failed validation; issue a new request",
			"reference", res.Request.Reference, "error", res.Err)
		return
	default:
		return
	}

	tx := res.Transaction
	description := res.Request.Message
	if description == "" {
		description = "Incoming ledger payment"
	}
	rec := models.TransactionRecord{
		From: models.Party{
			Name:   string(tx.From),
			Handle: models.FieldUnset,
		},
		To: models.Party{
			Name:     string(tx.To),
			Handle:   string(tx.To),
			Verified: true,
		},
		Description:     description,
		TransactionDate: time.Now(),
		Status:          models.RecordStatusCompleted,
		Amount:          tx.Amount(),
		Source:          models.FieldUnset,
		Identifier:      string(tx.Signature),
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := h.History.Append(ctx, rec); err != nil {
		h.Log.Error("record matched payment", "reference", res.Request.Reference, "error", err)
	}
}
