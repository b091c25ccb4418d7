package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeKind names the write that produced a TransactionsChangedMessage.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeResync  ChangeKind = "resync"
)

// TransactionsChangedMessage tells consumers that an owner's transaction set
// changed. It carries no record data: consumers reload the full set, the same
// way subscribers receive whole snapshots.
type TransactionsChangedMessage struct {
	OwnerID       string     `json:"ownerId"`
	Kind          ChangeKind `json:"kind"`
	TransactionID string     `json:"transactionId,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// NewTransactionsChangedMessage builds an event stamped with the current time.
func NewTransactionsChangedMessage(ownerID string, kind ChangeKind, transactionID string) *TransactionsChangedMessage {
	return &TransactionsChangedMessage{
		OwnerID:       ownerID,
		Kind:          kind,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON encodes the message body.
func (m *TransactionsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionsChangedMessageFromJSON decodes a message; a missing owner is an
// error since the message cannot be routed.
func TransactionsChangedMessageFromJSON(data []byte) (*TransactionsChangedMessage, error) {
	var msg TransactionsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.OwnerID == "" {
		return nil, fmt.Errorf("message without owner id")
	}
	return &msg, nil
}
