// Package ledger owns the authoritative in-memory allowance state and
// the operations that mutate it while preserving balance invariants.
//
// Every mutating operation validates its whole input before touching any
// state, so a rejected call leaves children, transactions and goals
// exactly as they were. Persistence and event publishing live outside
// this package; callers receive the mutated records and forward them.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"familybank/internal/core"
)

// KindAll is the kind filter value that matches every transaction.
const KindAll = "all"

// State is the full ledger content handed to and from the persistence
// gateway. The gateway only ever holds copies, never live references.
type State struct {
	Children          []core.Child
	Transactions      []core.Transaction // newest first
	Goals             []core.Goal
	Settings          core.Settings
	LastInterestMonth string // "YYYY-MM" stamp, empty when never applied
}

// DefaultState returns the seeded state used on first run and on reset.
func DefaultState() State {
	return State{
		Children:     core.DefaultChildren(),
		Transactions: core.DefaultTransactions(),
		Goals:        core.DefaultGoals(),
		Settings:     core.DefaultSettings(),
	}
}

// Ledger is the single owner of the in-memory state. All access goes
// through its methods; the mutex serializes operations so each one runs
// to completion before the next starts.
type Ledger struct {
	mu    sync.Mutex
	state State

	now   func() time.Time
	newID func() string
}

// New creates a ledger over the given state.
func New(state State) *Ledger {
	return &Ledger{
		state: state,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// DepositResult carries everything a deposit changed.
type DepositResult struct {
	Transaction core.Transaction
	Child       core.Child
	Goal        *core.Goal // set when the deposit was linked to a goal
	GoalDone    bool       // completion edge-trigger from the linked allocation
}

// WithdrawalResult carries everything a withdrawal changed.
type WithdrawalResult struct {
	Transaction core.Transaction
	Child       core.Child
}

// InterestResult reports one monthly interest application.
type InterestResult struct {
	Applied      bool // at least one child received interest
	Month        string
	Transactions []core.Transaction
	Children     []core.Child
}

// EditResult carries the rewritten transaction and the rebalanced child.
type EditResult struct {
	Transaction core.Transaction
	Child       core.Child
}

// DeleteResult carries the removed transaction and the rebalanced child.
type DeleteResult struct {
	Transaction core.Transaction
	Child       core.Child
}

// AllocationResult carries the updated goal and the completion trigger.
type AllocationResult struct {
	Goal core.Goal
	Done bool // crossed from incomplete to complete in this call
}

// RecordDeposit appends a deposit transaction dated today and raises the
// child's balance. When goalID is non-empty the same amount is also
// allocated to that goal; balance and goal progress are independent
// counters, so the money is counted in both.
func (l *Ledger) RecordDeposit(childID string, amount core.Money, note, category, goalID string) (DepositResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := amount.Validate(); err != nil {
		return DepositResult{}, err
	}
	ci := l.childIndex(childID)
	if ci < 0 {
		return DepositResult{}, core.ErrChildNotFound
	}
	if note = strings.TrimSpace(note); note == "" {
		note = "Deposit"
	}
	if category == "" {
		category = core.DefaultCategory(core.Deposit)
	}
	if !core.ValidCategory(core.Deposit, category) {
		return DepositResult{}, core.ErrUnknownCategory
	}
	gi := -1
	if goalID != "" {
		gi = l.goalIndex(goalID)
		if gi < 0 || l.state.Goals[gi].ChildID != childID {
			return DepositResult{}, core.ErrGoalNotFound
		}
	}

	tx := l.appendTransaction(childID, core.Deposit, amount, note, category)
	l.state.Children[ci].Balance = l.state.Children[ci].Balance.Add(amount)

	res := DepositResult{Transaction: tx, Child: l.state.Children[ci]}
	if gi >= 0 {
		goal, done := l.allocate(gi, amount)
		res.Goal = &goal
		res.GoalDone = done
	}
	return res, nil
}

// RecordWithdrawal appends a withdrawal transaction and lowers the
// child's balance. Withdrawing more than the balance fails with
// ErrInsufficientFunds and changes nothing.
func (l *Ledger) RecordWithdrawal(childID string, amount core.Money, note, category string) (WithdrawalResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := amount.Validate(); err != nil {
		return WithdrawalResult{}, err
	}
	ci := l.childIndex(childID)
	if ci < 0 {
		return WithdrawalResult{}, core.ErrChildNotFound
	}
	if l.state.Children[ci].Balance.LessThan(amount) {
		return WithdrawalResult{}, core.ErrInsufficientFunds
	}
	if note = strings.TrimSpace(note); note == "" {
		note = "Withdrawal"
	}
	if category == "" {
		category = core.DefaultCategory(core.Withdrawal)
	}
	if !core.ValidCategory(core.Withdrawal, category) {
		return WithdrawalResult{}, core.ErrUnknownCategory
	}

	tx := l.appendTransaction(childID, core.Withdrawal, amount, note, category)
	l.state.Children[ci].Balance = l.state.Children[ci].Balance.Sub(amount)

	return WithdrawalResult{Transaction: tx, Child: l.state.Children[ci]}, nil
}

// ApplyMonthlyInterest credits each child with one month of interest at
// the configured annual rate. It has effect at most once per calendar
// month: repeated calls within the month identified by now are no-ops,
// tracked via the persisted month stamp. Children whose computed
// interest is at or below one cent are skipped.
func (l *Ledger) ApplyMonthlyInterest(now time.Time) (InterestResult, error) {
	if now.IsZero() {
		return InterestResult{}, core.ErrInvalidDate
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stamp := core.MonthStamp(now.Year(), int(now.Month()))
	if l.state.LastInterestMonth == stamp {
		return InterestResult{Month: stamp}, nil
	}

	rate := l.state.Settings.AnnualRatePercent
	res := InterestResult{Month: stamp}
	note := fmt.Sprintf("Monthly interest (%s%%)", strconv.FormatFloat(rate, 'f', -1, 64))
	for i := range l.state.Children {
		child := &l.state.Children[i]
		if !core.InterestDue(child.Balance, rate) {
			continue
		}
		amount := core.MonthlyInterest(child.Balance, rate)
		tx := core.Transaction{
			ID:        l.newID(),
			ChildID:   child.ID,
			Kind:      core.Interest,
			Amount:    amount,
			Note:      note,
			Category:  core.CategoryInterest,
			Date:      core.DateOf(now),
			CreatedAt: now,
		}
		l.state.Transactions = append([]core.Transaction{tx}, l.state.Transactions...)
		child.Balance = child.Balance.Add(amount)
		res.Applied = true
		res.Transactions = append(res.Transactions, tx)
		res.Children = append(res.Children, *child)
	}
	l.state.LastInterestMonth = stamp
	return res, nil
}

// EditTransaction replaces amount, note and category in place. Kind,
// child, date and id never change. The child's balance moves by the
// signed delta between the new and old amounts, so repeated edits never
// drift it away from the sum of the live transactions.
func (l *Ledger) EditTransaction(id string, amount core.Money, note, category string) (EditResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := amount.Validate(); err != nil {
		return EditResult{}, err
	}
	ti := l.transactionIndex(id)
	if ti < 0 {
		return EditResult{}, core.ErrTransactionNotFound
	}
	tx := l.state.Transactions[ti]
	if !core.ValidCategory(tx.Kind, category) {
		return EditResult{}, core.ErrUnknownCategory
	}
	ci := l.childIndex(tx.ChildID)
	if ci < 0 {
		return EditResult{}, core.ErrChildNotFound
	}

	delta := amount.Cents - tx.Amount.Cents
	if !tx.Kind.AddsToBalance() {
		delta = -delta
	}
	tx.Amount = amount
	tx.Note = note
	tx.Category = category
	l.state.Transactions[ti] = tx
	l.state.Children[ci].Balance.Cents += delta

	return EditResult{Transaction: tx, Child: l.state.Children[ci]}, nil
}

// DeleteTransaction removes the transaction and reverses its balance
// effect. Goal allocations the transaction may have funded are left
// untouched: no linkage between transactions and allocations is kept.
func (l *Ledger) DeleteTransaction(id string) (DeleteResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ti := l.transactionIndex(id)
	if ti < 0 {
		return DeleteResult{}, core.ErrTransactionNotFound
	}
	tx := l.state.Transactions[ti]
	ci := l.childIndex(tx.ChildID)
	if ci < 0 {
		return DeleteResult{}, core.ErrChildNotFound
	}

	l.state.Transactions = append(l.state.Transactions[:ti], l.state.Transactions[ti+1:]...)
	l.state.Children[ci].Balance.Cents -= tx.SignedCents()

	return DeleteResult{Transaction: tx, Child: l.state.Children[ci]}, nil
}

// AllocateToGoal raises goal progress by amount, clamped so progress
// never exceeds the target. The returned Done flag fires only when this
// call crossed the goal from incomplete to complete; allocations to an
// already-complete goal never re-trigger it. The child's balance is not
// touched.
func (l *Ledger) AllocateToGoal(goalID string, amount core.Money) (AllocationResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := amount.Validate(); err != nil {
		return AllocationResult{}, err
	}
	gi := l.goalIndex(goalID)
	if gi < 0 {
		return AllocationResult{}, core.ErrGoalNotFound
	}
	goal, done := l.allocate(gi, amount)
	return AllocationResult{Goal: goal, Done: done}, nil
}

// DeleteGoal removes the goal. Goal progress is a separate tracked
// allocation, not a reservation, so the child's balance is unaffected.
func (l *Ledger) DeleteGoal(goalID string) (core.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	gi := l.goalIndex(goalID)
	if gi < 0 {
		return core.Goal{}, core.ErrGoalNotFound
	}
	goal := l.state.Goals[gi]
	l.state.Goals = append(l.state.Goals[:gi], l.state.Goals[gi+1:]...)
	return goal, nil
}

// SetInterestRate updates the annual rate used by interest runs.
func (l *Ledger) SetInterestRate(ratePercent float64) (core.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ratePercent < 0 {
		return core.Settings{}, core.ErrInvalidRate
	}
	l.state.Settings.AnnualRatePercent = ratePercent
	return l.state.Settings, nil
}

// Reset restores the seeded defaults and returns the new state for the
// persistence gateway to replace its copy with.
func (l *Ledger) Reset() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = DefaultState()
	return l.snapshotStateLocked()
}

// BalanceOf returns the child's current balance.
func (l *Ledger) BalanceOf(childID string) (core.Money, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ci := l.childIndex(childID)
	if ci < 0 {
		return core.Money{}, core.ErrChildNotFound
	}
	return l.state.Children[ci].Balance, nil
}

// TotalSaved sums goal progress over all goals owned by the child.
func (l *Ledger) TotalSaved(childID string) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total core.Money
	for _, g := range l.state.Goals {
		if g.ChildID == childID {
			total = total.Add(g.Current)
		}
	}
	return total
}

// TransactionsFor returns the child's transactions in stored order.
func (l *Ledger) TransactionsFor(childID string) []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.Transaction
	for _, t := range l.state.Transactions {
		if t.ChildID == childID {
			out = append(out, t)
		}
	}
	return out
}

// SearchTransactions returns transactions whose note or owning child's
// name contains query case-insensitively, restricted to the given kind.
// Kind "all" (or empty) matches every kind. Search and filter compose
// with AND.
func (l *Ledger) SearchTransactions(query, kind string) []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	names := make(map[string]string, len(l.state.Children))
	for _, c := range l.state.Children {
		names[c.ID] = strings.ToLower(c.Name)
	}

	var out []core.Transaction
	for _, t := range l.state.Transactions {
		if kind != "" && kind != KindAll && string(t.Kind) != kind {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Note), q) &&
			!strings.Contains(names[t.ChildID], q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Children returns a copy of the child accounts.
func (l *Ledger) Children() []core.Child {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Child(nil), l.state.Children...)
}

// Goals returns a copy of all goals.
func (l *Ledger) Goals() []core.Goal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Goal(nil), l.state.Goals...)
}

// GoalsFor returns the goals owned by the child.
func (l *Ledger) GoalsFor(childID string) []core.Goal {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.Goal
	for _, g := range l.state.Goals {
		if g.ChildID == childID {
			out = append(out, g)
		}
	}
	return out
}

// Settings returns the current settings.
func (l *Ledger) Settings() core.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Settings
}

// LastInterestMonth returns the persisted interest month stamp.
func (l *Ledger) LastInterestMonth() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.LastInterestMonth
}

// AdoptInterestMonth records a month stamp applied by another process,
// making ApplyMonthlyInterest a no-op for that month. Stamps sort
// lexicographically, so an older stamp never rolls the marker back.
func (l *Ledger) AdoptInterestMonth(month string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if month > l.state.LastInterestMonth {
		l.state.LastInterestMonth = month
	}
}

// Export builds the portable snapshot document.
func (l *Ledger) Export(now time.Time) core.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return core.Snapshot{
		ExportDate:   now,
		Version:      core.SnapshotVersion,
		Children:     append([]core.Child(nil), l.state.Children...),
		Transactions: append([]core.Transaction(nil), l.state.Transactions...),
		Goals:        append([]core.Goal(nil), l.state.Goals...),
		Settings:     l.state.Settings,
	}
}

// StateCopy returns a deep-enough copy of the current state for the
// persistence gateway; the ledger never hands out live slices.
func (l *Ledger) StateCopy() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotStateLocked()
}

func (l *Ledger) snapshotStateLocked() State {
	return State{
		Children:          append([]core.Child(nil), l.state.Children...),
		Transactions:      append([]core.Transaction(nil), l.state.Transactions...),
		Goals:             append([]core.Goal(nil), l.state.Goals...),
		Settings:          l.state.Settings,
		LastInterestMonth: l.state.LastInterestMonth,
	}
}

func (l *Ledger) appendTransaction(childID string, kind core.TransactionKind, amount core.Money, note, category string) core.Transaction {
	now := l.now()
	tx := core.Transaction{
		ID:        l.newID(),
		ChildID:   childID,
		Kind:      kind,
		Amount:    amount,
		Note:      note,
		Category:  category,
		Date:      core.DateOf(now),
		CreatedAt: now,
	}
	// Newest first: the list is reverse-chronological by insertion.
	l.state.Transactions = append([]core.Transaction{tx}, l.state.Transactions...)
	return tx
}

// allocate clamps goal progress at the target and reports the
// incomplete-to-complete edge. Caller holds the lock.
func (l *Ledger) allocate(gi int, amount core.Money) (core.Goal, bool) {
	goal := l.state.Goals[gi]
	wasComplete := goal.Complete()
	next := goal.Current.Add(amount)
	if next.Cents > goal.Target.Cents {
		next = goal.Target
	}
	goal.Current = next
	l.state.Goals[gi] = goal
	return goal, !wasComplete && goal.Complete()
}

func (l *Ledger) childIndex(id string) int {
	for i, c := range l.state.Children {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) transactionIndex(id string) int {
	for i, t := range l.state.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) goalIndex(id string) int {
	for i, g := range l.state.Goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}
