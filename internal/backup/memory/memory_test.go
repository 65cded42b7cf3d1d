package memory

import (
	"context"
	"testing"

	"familybank/internal/core"
)

func validTx() core.Transaction {
	return core.Transaction{
		ID:       "t1",
		ChildID:  "alex",
		Kind:     core.Deposit,
		Amount:   core.Money{Cents: 1000},
		Category: core.CategoryAllowance,
		Date:     core.NewDate(2026, 2, 16),
	}
}

func TestAppendAndRows(t *testing.T) {
	s := New()

	ref, err := s.Append(context.Background(), "Alex", validTx())
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("expected mem:1, got %q", ref)
	}

	rows := s.Rows()
	if len(rows) != 1 || rows[0].ChildName != "Alex" || rows[0].Transaction.ID != "t1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestAppendRejectsInvalidTransaction(t *testing.T) {
	s := New()

	tx := validTx()
	tx.Amount.Cents = 0
	if _, err := s.Append(context.Background(), "Alex", tx); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(s.Rows()) != 0 {
		t.Fatalf("invalid transaction stored")
	}
}
