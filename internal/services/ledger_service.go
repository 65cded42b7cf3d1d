package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"familybank/internal/amqp"
	"familybank/internal/core"
	"familybank/internal/ledger"
)

// Store is the persistence gateway consumed by the service. Writes are
// best-effort: the service logs failures and keeps going, so a crash
// between mutation and persistence loses that mutation. That durability
// gap is accepted for a local single-user tool.
type Store interface {
	SaveChild(ctx context.Context, c core.Child) error
	InsertTransaction(ctx context.Context, t core.Transaction) error
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	UpsertGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	SaveSettings(ctx context.Context, s core.Settings) error
	SetInterestMarker(ctx context.Context, month string) error
	ReplaceState(ctx context.Context, state ledger.State) error
}

// Publisher emits ledger events for the notification worker.
type Publisher interface {
	PublishEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// LedgerService wires the in-memory ledger to persistence and events.
// Every user action maps to exactly one method here; each method
// mutates the ledger first (the authoritative state), then persists and
// publishes without awaiting confirmation.
type LedgerService struct {
	ledger    *ledger.Ledger
	store     Store
	publisher Publisher
}

func NewLedgerService(l *ledger.Ledger, store Store, publisher Publisher) *LedgerService {
	return &LedgerService{ledger: l, store: store, publisher: publisher}
}

// Deposit records a deposit for a child, optionally allocating the same
// amount to one of the child's goals.
func (s *LedgerService) Deposit(ctx context.Context, childID string, amount core.Money, note, category, goalID string) (ledger.DepositResult, error) {
	res, err := s.ledger.RecordDeposit(childID, amount, note, category, goalID)
	if err != nil {
		return ledger.DepositResult{}, err
	}

	s.persistTransaction(ctx, res.Transaction)
	s.persistChild(ctx, res.Child)
	if res.Goal != nil {
		s.persistGoal(ctx, *res.Goal)
	}

	s.publishTransaction(ctx, res.Transaction)
	if res.GoalDone && res.Goal != nil {
		s.publishGoalCompleted(ctx, *res.Goal)
	}

	slog.InfoContext(ctx, "Deposit recorded",
		"child_id", childID,
		"amount_cents", amount.Cents,
		"category", res.Transaction.Category,
		"goal_id", goalID)
	return res, nil
}

// Withdraw records a withdrawal. Amounts above the child's balance fail
// with core.ErrInsufficientFunds and change nothing.
func (s *LedgerService) Withdraw(ctx context.Context, childID string, amount core.Money, note, category string) (ledger.WithdrawalResult, error) {
	res, err := s.ledger.RecordWithdrawal(childID, amount, note, category)
	if err != nil {
		return ledger.WithdrawalResult{}, err
	}

	s.persistTransaction(ctx, res.Transaction)
	s.persistChild(ctx, res.Child)
	s.publishTransaction(ctx, res.Transaction)

	slog.InfoContext(ctx, "Withdrawal recorded",
		"child_id", childID,
		"amount_cents", amount.Cents,
		"category", res.Transaction.Category)
	return res, nil
}

// ApplyMonthlyInterest runs one interest application for the month of
// now. The ledger guarantees at most one effective run per calendar
// month; the persisted marker extends the guarantee across restarts.
func (s *LedgerService) ApplyMonthlyInterest(ctx context.Context, now time.Time) (ledger.InterestResult, error) {
	res, err := s.ledger.ApplyMonthlyInterest(now)
	if err != nil {
		return ledger.InterestResult{}, err
	}

	for _, tx := range res.Transactions {
		s.persistTransaction(ctx, tx)
	}
	for _, child := range res.Children {
		s.persistChild(ctx, child)
	}
	if err := s.store.SetInterestMarker(ctx, res.Month); err != nil {
		slog.ErrorContext(ctx, "Failed to persist interest marker", "month", res.Month, "error", err)
	}

	if res.Applied {
		msg := amqp.NewLedgerEventMessage(amqp.EventInterestApplied)
		s.publish(ctx, msg)
		slog.InfoContext(ctx, "Monthly interest applied",
			"month", res.Month,
			"children_credited", len(res.Children))
	}
	return res, nil
}

// EditTransaction rewrites amount, note and category of a transaction
// and rebalances its child by the signed delta.
func (s *LedgerService) EditTransaction(ctx context.Context, id string, amount core.Money, note, category string) (ledger.EditResult, error) {
	res, err := s.ledger.EditTransaction(id, amount, note, category)
	if err != nil {
		return ledger.EditResult{}, err
	}

	if err := s.store.UpdateTransaction(ctx, res.Transaction); err != nil {
		slog.ErrorContext(ctx, "Failed to persist transaction edit", "id", id, "error", err)
	}
	s.persistChild(ctx, res.Child)

	slog.InfoContext(ctx, "Transaction edited", "id", id, "amount_cents", amount.Cents)
	return res, nil
}

// DeleteTransaction removes a transaction and reverses its balance
// effect. Goal progress attributed to the transaction stays as it is.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (ledger.DeleteResult, error) {
	res, err := s.ledger.DeleteTransaction(id)
	if err != nil {
		return ledger.DeleteResult{}, err
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to persist transaction delete", "id", id, "error", err)
	}
	s.persistChild(ctx, res.Child)

	slog.InfoContext(ctx, "Transaction deleted",
		"id", id, "kind", string(res.Transaction.Kind), "amount_cents", res.Transaction.Amount.Cents)
	return res, nil
}

// AllocateToGoal raises goal progress, clamped at the target.
func (s *LedgerService) AllocateToGoal(ctx context.Context, goalID string, amount core.Money) (ledger.AllocationResult, error) {
	res, err := s.ledger.AllocateToGoal(goalID, amount)
	if err != nil {
		return ledger.AllocationResult{}, err
	}

	s.persistGoal(ctx, res.Goal)
	if res.Done {
		s.publishGoalCompleted(ctx, res.Goal)
	}

	slog.InfoContext(ctx, "Goal allocation",
		"goal_id", goalID,
		"amount_cents", amount.Cents,
		"current_cents", res.Goal.Current.Cents,
		"completed", res.Done)
	return res, nil
}

// DeleteGoal removes a goal; the child's balance is untouched.
func (s *LedgerService) DeleteGoal(ctx context.Context, goalID string) (core.Goal, error) {
	goal, err := s.ledger.DeleteGoal(goalID)
	if err != nil {
		return core.Goal{}, err
	}

	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		slog.ErrorContext(ctx, "Failed to persist goal delete", "goal_id", goalID, "error", err)
	}

	slog.InfoContext(ctx, "Goal deleted", "goal_id", goalID, "name", goal.Name)
	return goal, nil
}

// SetInterestRate updates the annual interest rate.
func (s *LedgerService) SetInterestRate(ctx context.Context, ratePercent float64) (core.Settings, error) {
	settings, err := s.ledger.SetInterestRate(ratePercent)
	if err != nil {
		return core.Settings{}, err
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		slog.ErrorContext(ctx, "Failed to persist settings", "error", err)
	}

	slog.InfoContext(ctx, "Interest rate updated", "annual_rate_percent", ratePercent)
	return settings, nil
}

// Reset restores the seeded default state in memory and on disk.
func (s *LedgerService) Reset(ctx context.Context) error {
	state := s.ledger.Reset()
	if err := s.store.ReplaceState(ctx, state); err != nil {
		return fmt.Errorf("persist reset state: %w", err)
	}
	slog.InfoContext(ctx, "Ledger reset to defaults")
	return nil
}

// Export builds the portable snapshot document.
func (s *LedgerService) Export(now time.Time) core.Snapshot {
	return s.ledger.Export(now)
}

// Query pass-throughs; all pure reads on the ledger.

func (s *LedgerService) Children() []core.Child { return s.ledger.Children() }

func (s *LedgerService) BalanceOf(childID string) (core.Money, error) {
	return s.ledger.BalanceOf(childID)
}

func (s *LedgerService) TotalSaved(childID string) core.Money { return s.ledger.TotalSaved(childID) }

func (s *LedgerService) TransactionsFor(childID string) []core.Transaction {
	return s.ledger.TransactionsFor(childID)
}

func (s *LedgerService) SearchTransactions(query, kind string) []core.Transaction {
	return s.ledger.SearchTransactions(query, kind)
}

func (s *LedgerService) Goals() []core.Goal               { return s.ledger.Goals() }
func (s *LedgerService) GoalsFor(childID string) []core.Goal { return s.ledger.GoalsFor(childID) }
func (s *LedgerService) Settings() core.Settings          { return s.ledger.Settings() }
func (s *LedgerService) LastInterestMonth() string        { return s.ledger.LastInterestMonth() }
func (s *LedgerService) AdoptInterestMonth(month string)  { s.ledger.AdoptInterestMonth(month) }

func (s *LedgerService) persistTransaction(ctx context.Context, t core.Transaction) {
	if err := s.store.InsertTransaction(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to persist transaction", "id", t.ID, "error", err)
	}
}

func (s *LedgerService) persistChild(ctx context.Context, c core.Child) {
	if err := s.store.SaveChild(ctx, c); err != nil {
		slog.ErrorContext(ctx, "Failed to persist child", "child_id", c.ID, "error", err)
	}
}

func (s *LedgerService) persistGoal(ctx context.Context, g core.Goal) {
	if err := s.store.UpsertGoal(ctx, g); err != nil {
		slog.ErrorContext(ctx, "Failed to persist goal", "goal_id", g.ID, "error", err)
	}
}

func (s *LedgerService) publishTransaction(ctx context.Context, t core.Transaction) {
	msg := amqp.NewLedgerEventMessage(amqp.EventTransactionRecorded)
	msg.ChildID = t.ChildID
	msg.TransactionID = t.ID
	msg.AmountCents = t.Amount.Cents
	s.publish(ctx, msg)
}

func (s *LedgerService) publishGoalCompleted(ctx context.Context, g core.Goal) {
	msg := amqp.NewLedgerEventMessage(amqp.EventGoalCompleted)
	msg.ChildID = g.ChildID
	msg.GoalID = g.ID
	msg.AmountCents = g.Target.Cents
	s.publish(ctx, msg)
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.LedgerEventMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping", "event", msg.Event)
		return
	}
	if err := s.publisher.PublishEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event", "event", msg.Event, "error", err)
	}
}
