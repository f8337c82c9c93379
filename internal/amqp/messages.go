package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/codingniket/FinApp/internal/core"
)

// Event types published after a successful wallet API mutation.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent describes a change made through the web client.
// Transaction is set for created events only.
type TransactionEvent struct {
	Type          string            `json:"type"`
	UserID        string            `json:"user_id"`
	TransactionID string            `json:"transaction_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewCreatedEvent builds the event for a transaction the API accepted.
func NewCreatedEvent(userID string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:          EventTransactionCreated,
		UserID:        userID,
		TransactionID: tx.ID,
		Transaction:   &tx,
		Timestamp:     time.Now().UTC(),
	}
}

// NewDeletedEvent builds the event for a deleted transaction.
func NewDeletedEvent(userID, transactionID string) *TransactionEvent {
	return &TransactionEvent{
		Type:          EventTransactionDeleted,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventTransactionCreated:
		if msg.Transaction == nil {
			return nil, errors.New("created event without transaction")
		}
	case EventTransactionDeleted:
	default:
		return nil, errors.New("unknown event type: " + msg.Type)
	}
	if msg.TransactionID == "" {
		return nil, errors.New("event without transaction id")
	}
	return &msg, nil
}
