package models

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a payment amount is zero, negative, or
// carries more precision than the ledger can represent.
var ErrInvalidAmount = errors.New("invalid amount")

// PaymentRequest describes one expected incoming payment. Immutable once
// constructed. Label and message are display-only and carry no weight in
// matching.
type PaymentRequest struct {
	Recipient Address
	Amount    decimal.Decimal
	Reference ReferenceID
	Label     string
	Message   string
}

// NewPaymentRequest validates the recipient and amount and generates the
// request's reference internally. The reference is never caller-supplied, so
// uniqueness across outstanding requests holds by construction.
func NewPaymentRequest(recipient string, amount decimal.Decimal, label, message string) (PaymentRequest, error) {
	addr, err := ParseAddress(recipient)
	if err != nil {
		return PaymentRequest{}, err
	}
	if !amount.IsPositive() {
		return PaymentRequest{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return PaymentRequest{
		Recipient: addr,
		Amount:    amount,
		Reference: NewReferenceID(),
		Label:     label,
		Message:   message,
	}, nil
}

// RequestURI encodes the request as a solana: payment URI:
//
//	solana:<recipient>?amount=...&label=...&message=...&reference=...
//
// The encoding is deterministic (query keys in sorted order, amount as a plain
// decimal string) and one-way: it is handed to the code renderer, never parsed
// back.
func (p PaymentRequest) RequestURI() string {
	q := url.Values{}
	q.Set("amount", p.Amount.String())
	q.Set("reference", p.Reference.String())
	if p.Label != "" {
		q.Set("label", p.Label)
	}
	if p.Message != "" {
		q.Set("message", p.Message)
	}
	return "solana:" + string(p.Recipient) + "?" + q.Encode()
}
