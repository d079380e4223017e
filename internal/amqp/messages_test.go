package amqp

import (
	"testing"

	"ledger/internal/ledger"
)

func TestTransactionRecordedMessageRoundTrip(t *testing.T) {
	txn := ledger.Transaction{
		ID:       7,
		Title:    "Salary",
		Type:     ledger.Income,
		Value:    ledger.Money{Cents: 500000},
		Category: ledger.Category{ID: 1, Title: "Job"},
	}

	msg := NewTransactionRecordedMessage(txn)
	if msg.ID != 7 || msg.Title != "Salary" || msg.Type != "income" {
		t.Errorf("message = %+v", msg)
	}
	if msg.ValueCents != 500000 || msg.Category != "Job" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	decoded, err := TransactionRecordedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error: %v", err)
	}
	if decoded.ID != msg.ID || decoded.ValueCents != msg.ValueCents || decoded.Category != msg.Category {
		t.Errorf("decoded = %+v, want %+v", decoded, msg)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("timestamp = %v, want %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestTransactionRecordedMessageFromJSONInvalid(t *testing.T) {
	if _, err := TransactionRecordedMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("FromJSON() should fail on malformed input")
	}
}
