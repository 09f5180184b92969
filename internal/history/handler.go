package history

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	Ledger *Ledger
	Log    *slog.Logger
}

func NewHandler(ledger *Ledger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Ledger: ledger, Log: log}
}

// ListTransactions returns the history, most recent first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Ledger.List()); err != nil {
		h.Log.Error("encode transactions", "error", err)
	}
}
