package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solcash/backend/internal/models"
)

func TestMemoryMissingKeyReadsEmpty(t *testing.T) {
	m := NewMemory()
	records, err := m.Get(context.Background(), "transactions")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("missing key: got %d records, want 0", len(records))
	}
}

func TestMemorySetThenGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []models.TransactionRecord{{
		ID:              "1",
		From:            models.Party{Name: "a", Handle: models.FieldUnset},
		To:              models.Party{Name: "b", Handle: "b", Verified: true},
		Description:     "coffee",
		TransactionDate: time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC),
		Status:          models.RecordStatusCompleted,
		Amount:          decimal.RequireFromString("0.25"),
		Source:          models.FieldUnset,
		Identifier:      "sig-1",
	}}
	if err := m.Set(ctx, "transactions", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	out, err := m.Get(ctx, "transactions")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if out[0].ID != "1" || out[0].Description != "coffee" || !out[0].Amount.Equal(in[0].Amount) {
		t.Errorf("record changed across the store: %+v", out[0])
	}
	if !out[0].TransactionDate.Equal(in[0].TransactionDate) {
		t.Errorf("date: got %s, want %s", out[0].TransactionDate, in[0].TransactionDate)
	}
}
