package models

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned when a ledger address cannot be parsed.
var ErrInvalidAddress = errors.New("invalid ledger address")

// Address is a ledger address: the base58 encoding of a 32-byte public key.
type Address string

// ParseAddress validates s as a base58-encoded 32-byte key.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("%w: decoded to %d bytes, want 32", ErrInvalidAddress, len(raw))
	}
	return Address(s), nil
}

func (a Address) String() string { return string(a) }
