package amqp

import (
	"testing"
	"time"
)

func TestLedgerEventMessageRoundTrip(t *testing.T) {
	msg := NewLedgerEventMessage(EventTransactionRecorded)
	msg.ChildID = "alex"
	msg.TransactionID = "tx-1"
	msg.AmountCents = 1000

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := LedgerEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if back.Event != EventTransactionRecorded || back.ChildID != "alex" ||
		back.TransactionID != "tx-1" || back.AmountCents != 1000 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.OccurredAt.IsZero() {
		t.Fatalf("OccurredAt lost in round trip")
	}
}

func TestNewLedgerEventMessageSetsOccurredAt(t *testing.T) {
	before := time.Now()
	msg := NewLedgerEventMessage(EventGoalCompleted)
	after := time.Now()

	if msg.OccurredAt.Before(before) || msg.OccurredAt.After(after) {
		t.Fatalf("OccurredAt outside expected window: %v", msg.OccurredAt)
	}
}

func TestLedgerEventMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := LedgerEventMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
