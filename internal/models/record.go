package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordStatusCompleted is the only status the current flows persist: a record
// is written once a payment has succeeded, never before.
const RecordStatusCompleted = "Completed"

// FieldUnset is the sentinel for passthrough fields a flow does not populate.
const FieldUnset = "_"

// Party identifies one side of a recorded payment.
type Party struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	AvatarRef string `json:"avatar,omitempty"`
	Verified  bool   `json:"verified"`
}

// TransactionRecord is one line of the local payment history. Records are
// immutable once appended. IDs are sequential decimal strings assigned by the
// history ledger; Identifier carries the on-ledger signature when the flow
// knows it, so a record can be traced back to its transaction.
type TransactionRecord struct {
	ID              string          `json:"id"`
	From            Party           `json:"from"`
	To              Party           `json:"to"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Source          string          `json:"source"`
	Identifier      string          `json:"identifier"`
}
