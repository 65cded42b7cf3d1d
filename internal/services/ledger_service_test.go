package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"familybank/internal/amqp"
	"familybank/internal/core"
	"familybank/internal/ledger"
)

type fakeStore struct {
	mu           sync.Mutex
	transactions []core.Transaction
	children     []core.Child
	goals        []core.Goal
	deletedTx    []string
	deletedGoals []string
	settings     *core.Settings
	marker       string
	replaced     int
	failWrites   bool
}

func (f *fakeStore) fail() error {
	if f.failWrites {
		return errors.New("store down")
	}
	return nil
}

func (f *fakeStore) SaveChild(_ context.Context, c core.Child) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.children = append(f.children, c)
	return nil
}

func (f *fakeStore) InsertTransaction(_ context.Context, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.transactions = append(f.transactions, t)
	return nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.transactions = append(f.transactions, t)
	return nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedTx = append(f.deletedTx, id)
	return nil
}

func (f *fakeStore) UpsertGoal(_ context.Context, g core.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals = append(f.goals, g)
	return nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedGoals = append(f.deletedGoals, id)
	return nil
}

func (f *fakeStore) SaveSettings(_ context.Context, s core.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = &s
	return nil
}

func (f *fakeStore) SetInterestMarker(_ context.Context, month string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marker = month
	return nil
}

func (f *fakeStore) ReplaceState(_ context.Context, _ ledger.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced++
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEventMessage
}

func (f *fakePublisher) PublishEvent(_ context.Context, msg *amqp.LedgerEventMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

func (f *fakePublisher) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Event)
	}
	return out
}

func newTestService() (*LedgerService, *fakeStore, *fakePublisher) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewLedgerService(ledger.New(ledger.DefaultState()), store, pub)
	return svc, store, pub
}

func TestDepositPersistsAndPublishes(t *testing.T) {
	svc, store, pub := newTestService()

	res, err := svc.Deposit(context.Background(), "alex", core.Money{Cents: 1000}, "Allowance", core.CategoryAllowance, "")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if res.Child.Balance.Cents != 5550 {
		t.Fatalf("expected 5550, got %d", res.Child.Balance.Cents)
	}
	if len(store.transactions) != 1 || len(store.children) != 1 {
		t.Fatalf("expected one transaction and one child persisted, got %d/%d",
			len(store.transactions), len(store.children))
	}
	events := pub.eventNames()
	if len(events) != 1 || events[0] != amqp.EventTransactionRecorded {
		t.Fatalf("expected one transaction.recorded event, got %v", events)
	}
}

func TestDepositCompletingGoalPublishesBothEvents(t *testing.T) {
	svc, _, pub := newTestService()

	// goal-2 belongs to sam: target 50.00, current 15.00.
	res, err := svc.Deposit(context.Background(), "sam", core.Money{Cents: 3500}, "Robot fund", core.CategoryGift, "goal-2")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !res.GoalDone {
		t.Fatalf("expected goal completion")
	}
	events := pub.eventNames()
	if len(events) != 2 || events[0] != amqp.EventTransactionRecorded || events[1] != amqp.EventGoalCompleted {
		t.Fatalf("expected transaction.recorded then goal.completed, got %v", events)
	}
}

func TestRejectedWithdrawalPublishesNothing(t *testing.T) {
	svc, store, pub := newTestService()

	_, err := svc.Withdraw(context.Background(), "sam", core.Money{Cents: 3000}, "Too much", core.CategoryToy)
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(store.transactions) != 0 || len(pub.eventNames()) != 0 {
		t.Fatalf("rejected withdrawal must not persist or publish")
	}
}

func TestStoreFailureDoesNotFailOperation(t *testing.T) {
	svc, store, _ := newTestService()
	store.failWrites = true

	res, err := svc.Deposit(context.Background(), "alex", core.Money{Cents: 500}, "", "", "")
	if err != nil {
		t.Fatalf("deposit must succeed despite store failure: %v", err)
	}
	if res.Child.Balance.Cents != 5050 {
		t.Fatalf("ledger not updated: %d", res.Child.Balance.Cents)
	}
}

func TestApplyMonthlyInterestPersistsMarker(t *testing.T) {
	svc, store, pub := newTestService()

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	res, err := svc.ApplyMonthlyInterest(context.Background(), now)
	if err != nil {
		t.Fatalf("interest: %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected interest applied")
	}
	if store.marker != "2026-03" {
		t.Fatalf("marker not persisted, got %q", store.marker)
	}
	if len(store.transactions) != 2 || len(store.children) != 2 {
		t.Fatalf("expected both children's credits persisted, got %d/%d",
			len(store.transactions), len(store.children))
	}
	events := pub.eventNames()
	if len(events) != 1 || events[0] != amqp.EventInterestApplied {
		t.Fatalf("expected one interest.applied event, got %v", events)
	}
}

func TestSetInterestRatePersistsSettings(t *testing.T) {
	svc, store, _ := newTestService()

	settings, err := svc.SetInterestRate(context.Background(), 3)
	if err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if settings.AnnualRatePercent != 3 {
		t.Fatalf("expected 3, got %v", settings.AnnualRatePercent)
	}
	if store.settings == nil || store.settings.AnnualRatePercent != 3 {
		t.Fatalf("settings not persisted: %+v", store.settings)
	}
}

func TestResetReplacesState(t *testing.T) {
	svc, store, _ := newTestService()

	if _, err := svc.Deposit(context.Background(), "alex", core.Money{Cents: 100}, "", "", ""); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := svc.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.replaced != 1 {
		t.Fatalf("expected one ReplaceState call, got %d", store.replaced)
	}
	b, err := svc.BalanceOf("alex")
	if err != nil || b.Cents != 4550 {
		t.Fatalf("expected seeded balance after reset, got %d (err=%v)", b.Cents, err)
	}
}

func TestServicePublisherOptional(t *testing.T) {
	store := &fakeStore{}
	svc := NewLedgerService(ledger.New(ledger.DefaultState()), store, nil)

	if _, err := svc.Deposit(context.Background(), "alex", core.Money{Cents: 100}, "", "", ""); err != nil {
		t.Fatalf("deposit without publisher: %v", err)
	}
}
