package transfer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
)

func testAddr(b byte) string {
	return base58.Encode(bytes.Repeat([]byte{b}, 32))
}

// seedLedger submits a transfer into a fresh simulated ledger and returns the
// ledger, the stored transaction and the reference it is tagged with.
func seedLedger(t *testing.T, from, to string, amount string) (*ledgerclient.Memory, *ledgerclient.Transaction, models.ReferenceID) {
	t.Helper()
	ctx := context.Background()
	m := ledgerclient.NewMemory()

	lamports, err := ledgerclient.ToLamports(decimal.RequireFromString(amount))
	if err != nil {
		t.Fatalf("ToLamports: %v", err)
	}
	block, err := m.GetRecentBlockHandle(ctx)
	if err != nil {
		t.Fatalf("GetRecentBlockHandle: %v", err)
	}
	ref := models.NewReferenceID()
	sig, err := m.Submit(ctx, &ledgerclient.Transaction{
		From:        models.Address(from),
		To:          models.Address(to),
		Lamports:    lamports,
		Reference:   ref,
		RecentBlock: block,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	tx, err := m.GetTransactionDetail(ctx, sig)
	if err != nil {
		t.Fatalf("GetTransactionDetail: %v", err)
	}
	return m, tx, ref
}

// request builds a PaymentRequest around a known reference so a test can aim
// it at a seeded transaction.
func request(recipient, amount string, ref models.ReferenceID) models.PaymentRequest {
	return models.PaymentRequest{
		Recipient: models.Address(recipient),
		Amount:    decimal.RequireFromString(amount),
		Reference: ref,
	}
}

func mismatchReason(t *testing.T, err error) MismatchReason {
	t.Helper()
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got: %v", err)
	}
	return mismatch.Reason
}

func TestValidateMatch(t *testing.T) {
	recipient := testAddr(2)
	ledger, tx, ref := seedLedger(t, testAddr(1), recipient, "1.0")

	v := NewValidator(ledger)
	if err := v.Validate(context.Background(), request(recipient, "1.0", ref), tx); err != nil {
		t.Errorf("expected MATCH, got: %v", err)
	}
}

func TestValidateWrongAmountNoTolerance(t *testing.T) {
	recipient := testAddr(2)
	ledger, tx, ref := seedLedger(t, testAddr(1), recipient, "0.999999")

	v := NewValidator(ledger)
	err := v.Validate(context.Background(), request(recipient, "1.0", ref), tx)
	if got := mismatchReason(t, err); got != ReasonWrongAmount {
		t.Errorf("reason: got %s, want %s", got, ReasonWrongAmount)
	}
}

func TestValidateWrongRecipient(t *testing.T) {
	ledger, tx, ref := seedLedger(t, testAddr(1), testAddr(2), "1.0")

	v := NewValidator(ledger)
	err := v.Validate(context.Background(), request(testAddr(3), "1.0", ref), tx)
	if got := mismatchReason(t, err); got != ReasonWrongRecipient {
		t.Errorf("reason: got %s, want %s", got, ReasonWrongRecipient)
	}
}

func TestValidateForeignReference(t *testing.T) {
	recipient := testAddr(2)
	ledger, tx, _ := seedLedger(t, testAddr(1), recipient, "1.0")

	// Right recipient, right amount, different reference: still a mismatch.
	err := NewValidator(ledger).Validate(context.Background(),
		request(recipient, "1.0", models.NewReferenceID()), tx)
	if got := mismatchReason(t, err); got != ReasonUntaggedOrForeign {
		t.Errorf("reason: got %s, want %s", got, ReasonUntaggedOrForeign)
	}
}

func TestValidateDetailFetchFailureIsTransient(t *testing.T) {
	recipient := testAddr(2)
	ledger, tx, ref := seedLedger(t, testAddr(1), recipient, "1.0")
	ledger.FailNext(1)

	err := NewValidator(ledger).Validate(context.Background(), request(recipient, "1.0", ref), tx)
	if !errors.Is(err, ledgerclient.ErrUnavailable) {
		t.Errorf("expected transient ErrUnavailable, got: %v", err)
	}
	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		t.Error("a transient detail-fetch failure must not be a mismatch")
	}
}
