package amqp

import (
	"encoding/json"
	"time"
)

// GoalContribution carries one strategic line of a confirmed
// allocation. NewBalanceCents is the absolute balance after the
// contribution, so redelivered messages apply cleanly.
type GoalContribution struct {
	GoalName        string `json:"goal_name"`
	AmountCents     int64  `json:"amount_cents"`
	NewBalanceCents int64  `json:"new_balance_cents"`
}

// AllocationCommittedMessage is published when a proposal is
// confirmed. The worker applies the goal balances out of band.
type AllocationCommittedMessage struct {
	AllocationID  string             `json:"allocation_id"`
	IncomeEventID string             `json:"income_event_id"`
	Goals         []GoalContribution `json:"goals"`
	Timestamp     time.Time          `json:"timestamp"`
}

func NewAllocationCommittedMessage(allocationID, incomeEventID string, goals []GoalContribution) *AllocationCommittedMessage {
	return &AllocationCommittedMessage{
		AllocationID:  allocationID,
		IncomeEventID: incomeEventID,
		Goals:         goals,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AllocationCommittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func AllocationCommittedMessageFromJSON(data []byte) (*AllocationCommittedMessage, error) {
	var msg AllocationCommittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
