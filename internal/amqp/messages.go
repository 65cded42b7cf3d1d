package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published by the ledger service.
const (
	EventTransactionRecorded = "transaction.recorded"
	EventInterestApplied     = "interest.applied"
	EventGoalCompleted       = "goal.completed"
)

// LedgerEventMessage is the wire form of a ledger event. It carries ids
// and the amount in cents; consumers fetch any further detail from the
// database.
type LedgerEventMessage struct {
	Event         string    `json:"event"`
	ChildID       string    `json:"childId,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	GoalID        string    `json:"goalId,omitempty"`
	AmountCents   int64     `json:"amountCents,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewLedgerEventMessage creates an event stamped with the current time.
func NewLedgerEventMessage(event string) *LedgerEventMessage {
	return &LedgerEventMessage{Event: event, OccurredAt: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON parses a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
