package core

// Seed data for a fresh install or a reset. Balances and history match:
// each child's balance equals the signed sum of its seeded transactions
// plus its starting pocket money.

// DefaultChildren returns the seeded child accounts.
func DefaultChildren() []Child {
	return []Child{
		{ID: "alex", Name: "Alex", Age: 10, Balance: Money{Cents: 4550}},
		{ID: "sam", Name: "Sam", Age: 8, Balance: Money{Cents: 2300}},
	}
}

// DefaultTransactions returns the seeded history, newest first.
func DefaultTransactions() []Transaction {
	mk := func(id, child string, kind TransactionKind, cents int64, note, category string, date Date) Transaction {
		return Transaction{
			ID:        id,
			ChildID:   child,
			Kind:      kind,
			Amount:    Money{Cents: cents},
			Note:      note,
			Category:  category,
			Date:      date,
			CreatedAt: date.Time,
		}
	}
	return []Transaction{
		mk("seed-1", "alex", Deposit, 1000, "Weekly allowance", CategoryAllowance, NewDate(2026, 2, 16)),
		mk("seed-2", "alex", Withdrawal, 500, "Bought toy", CategoryToy, NewDate(2026, 2, 14)),
		mk("seed-3", "sam", Deposit, 800, "Chore completion", CategoryChore, NewDate(2026, 2, 15)),
		mk("seed-4", "alex", Interest, 50, "Monthly interest", CategoryInterest, NewDate(2026, 2, 1)),
		mk("seed-5", "sam", Withdrawal, 300, "Ice cream", CategoryTreat, NewDate(2026, 2, 10)),
	}
}

// DefaultGoals returns the seeded savings goals.
func DefaultGoals() []Goal {
	return []Goal{
		{ID: "goal-1", ChildID: "alex", Name: "New Bike", Target: Money{Cents: 10000}, Current: Money{Cents: 3200}, Icon: "bike"},
		{ID: "goal-2", ChildID: "sam", Name: "Toy Robot", Target: Money{Cents: 5000}, Current: Money{Cents: 1500}, Icon: "robot"},
		{ID: "goal-3", ChildID: "alex", Name: "Video Game", Target: Money{Cents: 6000}, Current: Money{Cents: 2000}, Icon: "game"},
	}
}

// DefaultSettings returns the initial interest rate and currency.
func DefaultSettings() Settings {
	return Settings{AnnualRatePercent: 5, Currency: "USD"}
}
