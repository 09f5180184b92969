package main

import (
	"net/http"

	"github.com/solcash/backend/internal/history"
	"github.com/solcash/backend/internal/payment"
	"github.com/solcash/backend/internal/transfer"
)

// RegisterRoutes adds the /v1/ payment endpoints to the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	paymentHandler *payment.Handler,
	transferHandler *transfer.Handler,
	historyHandler *history.Handler,
) {
	// Receive flow: create a request (starts its ledger watch), inspect it,
	// cancel it.
	mux.HandleFunc("POST /v1/requests", paymentHandler.CreateRequest)
	mux.HandleFunc("GET /v1/requests/{reference}", paymentHandler.GetRequest)
	mux.HandleFunc("DELETE /v1/requests/{reference}", paymentHandler.CancelRequest)

	// Send flow.
	mux.HandleFunc("POST /v1/transfers", transferHandler.SendTransfer)

	// Local transaction history, most recent first.
	mux.HandleFunc("GET /v1/transactions", historyHandler.ListTransactions)
}
