package models

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// testAddr builds a valid base58 address from a repeated byte.
func testAddr(b byte) string {
	return base58.Encode(bytes.Repeat([]byte{b}, 32))
}

func TestNewPaymentRequest(t *testing.T) {
	recipient := testAddr(7)
	amount := decimal.RequireFromString("1.5")

	req, err := NewPaymentRequest(recipient, amount, "Evil Cookies Inc", "Thanks!")
	if err != nil {
		t.Fatalf("NewPaymentRequest: %v", err)
	}
	if req.Recipient != Address(recipient) {
		t.Errorf("recipient: got %s, want %s", req.Recipient, recipient)
	}
	if !req.Amount.Equal(amount) {
		t.Errorf("amount: got %s, want %s", req.Amount, amount)
	}
	if req.Reference == "" {
		t.Error("reference should be generated")
	}

	// Two requests never share a reference.
	req2, err := NewPaymentRequest(recipient, amount, "", "")
	if err != nil {
		t.Fatalf("second NewPaymentRequest: %v", err)
	}
	if req.Reference == req2.Reference {
		t.Error("two requests share a reference")
	}
}

func TestNewPaymentRequestInvalidAddress(t *testing.T) {
	_, err := NewPaymentRequest("not-an-address-0OIl", decimal.NewFromInt(1), "", "")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got: %v", err)
	}

	// Valid base58 but wrong length.
	_, err = NewPaymentRequest(base58.Encode([]byte{1, 2, 3}), decimal.NewFromInt(1), "", "")
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for short key, got: %v", err)
	}
}

func TestNewPaymentRequestInvalidAmount(t *testing.T) {
	for _, raw := range []string{"0", "-2.5"} {
		_, err := NewPaymentRequest(testAddr(1), decimal.RequireFromString(raw), "", "")
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %s: expected ErrInvalidAmount, got: %v", raw, err)
		}
	}
}

func TestRequestURI(t *testing.T) {
	recipient := testAddr(9)
	req, err := NewPaymentRequest(recipient, decimal.RequireFromString("2.5"), "Evil Cookies Inc", "Thanks for your Sol!")
	if err != nil {
		t.Fatalf("NewPaymentRequest: %v", err)
	}

	uri := req.RequestURI()
	if !strings.HasPrefix(uri, "solana:"+recipient+"?") {
		t.Fatalf("uri missing recipient prefix: %s", uri)
	}
	for _, want := range []string{
		"amount=2.5",
		"reference=" + req.Reference.String(),
		"label=Evil+Cookies+Inc",
		"message=Thanks+for+your+Sol%21",
	} {
		if !strings.Contains(uri, want) {
			t.Errorf("uri missing %q: %s", want, uri)
		}
	}

	// Deterministic: the same request always encodes identically.
	if again := req.RequestURI(); again != uri {
		t.Errorf("encoding not deterministic:\n%s\n%s", uri, again)
	}

	// Optional fields are omitted, not emitted empty.
	bare, err := NewPaymentRequest(recipient, decimal.NewFromInt(1), "", "")
	if err != nil {
		t.Fatalf("NewPaymentRequest: %v", err)
	}
	bareURI := bare.RequestURI()
	if strings.Contains(bareURI, "label=") || strings.Contains(bareURI, "message=") {
		t.Errorf("empty label/message should be omitted: %s", bareURI)
	}
}
