package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2026, 1, 1), true},
		{NewDate(2026, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "t1",
		ChildID:  "alex",
		Kind:     Deposit,
		Amount:   Money{Cents: 100},
		Category: CategoryAllowance,
		Date:     NewDate(2026, 2, 16),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ChildID: "alex", Kind: "transfer", Amount: Money{Cents: 1}, Category: CategoryOther, Date: NewDate(2026, 1, 1)},
		{ChildID: "alex", Kind: Deposit, Amount: Money{Cents: 0}, Category: CategoryOther, Date: NewDate(2026, 1, 1)},
		{ChildID: "alex", Kind: Deposit, Amount: Money{Cents: 1}, Category: CategoryOther, Date: Date{}},
		{ChildID: "", Kind: Deposit, Amount: Money{Cents: 1}, Category: CategoryOther, Date: NewDate(2026, 1, 1)},
		{ChildID: "alex", Kind: Deposit, Amount: Money{Cents: 1}, Category: CategorySpending, Date: NewDate(2026, 1, 1)},
		{ChildID: "alex", Kind: Interest, Amount: Money{Cents: 1}, Category: CategoryGift, Date: NewDate(2026, 1, 1)},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSignedCents(t *testing.T) {
	cases := []struct {
		kind TransactionKind
		want int64
	}{
		{Deposit, 500},
		{Interest, 500},
		{Withdrawal, -500},
	}
	for _, tc := range cases {
		tx := Transaction{Kind: tc.kind, Amount: Money{Cents: 500}}
		if got := tx.SignedCents(); got != tc.want {
			t.Fatalf("%s expected %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestValidCategory(t *testing.T) {
	cases := []struct {
		kind     TransactionKind
		category string
		ok       bool
	}{
		{Deposit, CategoryAllowance, true},
		{Deposit, CategoryChore, true},
		{Deposit, CategorySpending, false},
		{Withdrawal, CategoryTreat, true},
		{Withdrawal, CategoryAllowance, false},
		{Interest, CategoryInterest, true},
		{Interest, CategoryOther, false},
		{Deposit, "", false},
	}
	for _, tc := range cases {
		if got := ValidCategory(tc.kind, tc.category); got != tc.ok {
			t.Fatalf("(%s,%q) expected %v, got %v", tc.kind, tc.category, tc.ok, got)
		}
	}
}

func TestDefaultCategory(t *testing.T) {
	if got := DefaultCategory(Deposit); got != CategoryOther {
		t.Fatalf("deposit default expected %q, got %q", CategoryOther, got)
	}
	if got := DefaultCategory(Withdrawal); got != CategoryOther {
		t.Fatalf("withdrawal default expected %q, got %q", CategoryOther, got)
	}
	if got := DefaultCategory(Interest); got != CategoryInterest {
		t.Fatalf("interest default expected %q, got %q", CategoryInterest, got)
	}
}

func TestGoalComplete(t *testing.T) {
	g := Goal{Target: Money{Cents: 10000}, Current: Money{Cents: 9999}}
	if g.Complete() {
		t.Fatalf("goal below target reported complete")
	}
	g.Current.Cents = 10000
	if !g.Complete() {
		t.Fatalf("goal at target reported incomplete")
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(Money{Cents: 4550})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "45.50" {
		t.Fatalf("expected 45.50, got %s", data)
	}

	var m Money
	if err := json.Unmarshal([]byte("10.00"), &m); err != nil || m.Cents != 1000 {
		t.Fatalf("expected 1000 cents, got %d (err=%v)", m.Cents, err)
	}
	if err := json.Unmarshal([]byte("0"), &m); err != nil || m.Cents != 0 {
		t.Fatalf("expected 0 cents, got %d (err=%v)", m.Cents, err)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, 2, 16)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2026-02-16"` {
		t.Fatalf("expected \"2026-02-16\", got %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "2026-02-16" {
		t.Fatalf("round trip expected 2026-02-16, got %s", back.String())
	}
}

func TestDefaultStateConsistency(t *testing.T) {
	children := DefaultChildren()
	txs := DefaultTransactions()
	for _, c := range children {
		var sum int64
		for _, tx := range txs {
			if tx.ChildID == c.ID {
				sum += tx.SignedCents()
			}
		}
		// Seed balances include pocket money on top of the seeded
		// history, so the signed sum never exceeds the balance.
		if sum > c.Balance.Cents {
			t.Fatalf("child %s seeded history sum %d exceeds balance %d", c.ID, sum, c.Balance.Cents)
		}
	}
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			t.Fatalf("seed transaction %d invalid: %v", i, err)
		}
	}
	for i, g := range DefaultGoals() {
		if err := g.Validate(); err != nil {
			t.Fatalf("seed goal %d invalid: %v", i, err)
		}
	}
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("seed settings invalid: %v", err)
	}
}
