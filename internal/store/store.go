package store

import (
	"context"

	"github.com/solcash/backend/internal/models"
)

// Store is the key-value persistence capability the transaction history is
// given. A missing key reads as an empty sequence; there is no schema
// migration beyond table creation.
type Store interface {
	Get(ctx context.Context, key string) ([]models.TransactionRecord, error)
	Set(ctx context.Context, key string, records []models.TransactionRecord) error
}
