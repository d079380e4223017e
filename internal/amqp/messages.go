package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/ledger"
)

// TransactionRecordedMessage announces a transaction persisted to the
// ledger, either by the single-create path or as part of an imported batch.
// It carries the full row so consumers need no database access.
type TransactionRecordedMessage struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	ValueCents int64     `json:"value_cents"`
	Category   string    `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(t ledger.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:         t.ID,
		Title:      t.Title,
		Type:       string(t.Type),
		ValueCents: t.Value.Cents,
		Category:   t.Category.Title,
		Timestamp:  time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
