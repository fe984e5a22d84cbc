package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerChangedMessage announces a committed ledger mutation. It carries no
// record data: consumers reload the ledger, since positions shift on delete.
type LedgerChangedMessage struct {
	Op        string    `json:"op"`
	Index     int       `json:"index"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingOp = errors.New("missing op")

func NewLedgerChangedMessage(op string, index, count int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Op:        op,
		Index:     index,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message; an empty op is rejected.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op == "" {
		return nil, errMissingOp
	}
	return &msg, nil
}
