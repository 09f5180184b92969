package transfer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/models"
)

type SendRequest struct {
	To          string `json:"to"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type SendResponse struct {
	Signature string                   `json:"signature"`
	Record    models.TransactionRecord `json:"record"`
}

// Handler exposes the send flow. Wallet is the owning wallet's address; key
// custody and signing stay with the environment's ledger client.
type Handler struct {
	Svc    *Service
	Wallet models.Address
	Log    *slog.Logger
}

func NewHandler(svc *Service, wallet models.Address, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Svc: svc, Wallet: wallet, Log: log}
}

// SendTransfer handles POST /v1/transfers.
func (h *Handler) SendTransfer(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		return
	}

	rec, sig, err := h.Svc.Send(r.Context(), h.Wallet, req.To, amount, req.Description)
	switch {
	case errors.Is(err, models.ErrInvalidAddress), errors.Is(err, models.ErrInvalidAmount):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	case errors.Is(err, ErrLedgerUnreachable):
		h.Log.Error("send transfer: ledger unreachable", "error", err)
		http.Error(w, `{"error":"ledger unreachable"}`, http.StatusBadGateway)
		return
	case err != nil:
		h.Log.Error("send transfer failed", "error", err)
		http.Error(w, `{"error":"transfer failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(SendResponse{Signature: string(sig), Record: rec})
}
