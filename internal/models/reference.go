package models

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// ReferenceID tags exactly one payment request. It is the base58 encoding of
// 32 random bytes, the same shape as a ledger participant key, so it can ride
// on a transfer instruction as a non-signing, non-writable participant and be
// found again through the ledger's reference index.
//
// References are never assigned sequentially and never reused: a request that
// fails validation needs a fresh one.
type ReferenceID string

// NewReferenceID draws a fresh reference from crypto/rand.
func NewReferenceID() ReferenceID {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("reference entropy: %v", err))
	}
	return ReferenceID(base58.Encode(buf))
}

func (r ReferenceID) String() string { return string(r) }
