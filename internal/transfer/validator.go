package transfer

import (
	"context"
	"fmt"

	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
)

// Mismatch reason codes.
type MismatchReason string

const (
	ReasonWrongRecipient    MismatchReason = "wrong_recipient"
	ReasonWrongAmount       MismatchReason = "wrong_amount"
	ReasonUntaggedOrForeign MismatchReason = "untagged_or_foreign"
)

// MismatchError reports a transaction that exists at a reference but does not
// satisfy its request. It is permanent: references are single-use, so the
// ledger will never produce a different transaction for the same one.
type MismatchError struct {
	Reason MismatchReason
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("transfer mismatch (%s): %s", e.Reason, e.Detail)
}

// Validator checks found transactions against their originating requests.
type Validator struct {
	client ledgerclient.Client
}

func NewValidator(client ledgerclient.Client) *Validator {
	return &Validator{client: client}
}

// Validate returns nil when candidate satisfies req. A *MismatchError is
// permanent. Errors wrapping ledgerclient.ErrUnavailable mean the
// confirmation fetch could not complete and the check should be retried.
//
// Checks run in order: recipient, amount, reference. Amount equality is exact
// in lamports; there is no tolerance. The reference check rejects a transfer
// that happens to pay the right recipient the right amount but was not tagged
// with this request's reference.
func (v *Validator) Validate(ctx context.Context, req models.PaymentRequest, candidate *ledgerclient.Transaction) error {
	if candidate.To != req.Recipient {
		return &MismatchError{
			Reason: ReasonWrongRecipient,
			Detail: fmt.Sprintf("paid %s, requested %s", candidate.To, req.Recipient),
		}
	}
	want, err := ledgerclient.ToLamports(req.Amount)
	if err != nil {
		return &MismatchError{Reason: ReasonWrongAmount, Detail: err.Error()}
	}
	if candidate.Lamports != want {
		return &MismatchError{
			Reason: ReasonWrongAmount,
			Detail: fmt.Sprintf("paid %s, requested %s", candidate.Amount(), req.Amount),
		}
	}
	if candidate.Reference != req.Reference {
		return &MismatchError{
			Reason: ReasonUntaggedOrForeign,
			Detail: "transaction is not tagged with the request reference",
		}
	}

	// Confirm against the ledger's own copy of the transaction, by signature.
	// This is the only step that can fail transiently.
	detail, err := v.client.GetTransactionDetail(ctx, candidate.Signature)
	if err != nil {
		return fmt.Errorf("%w: fetch detail for %s: %v", ledgerclient.ErrUnavailable, candidate.Signature, err)
	}
	if detail.Status != ledgerclient.StatusConfirmed && detail.Status != ledgerclient.StatusFinalized {
		return fmt.Errorf("%w: transaction %s not yet confirmed", ledgerclient.ErrUnavailable, candidate.Signature)
	}
	if detail.Reference != req.Reference {
		return &MismatchError{
			Reason: ReasonUntaggedOrForeign,
			Detail: "ledger detail does not carry the request reference",
		}
	}
	return nil
}
