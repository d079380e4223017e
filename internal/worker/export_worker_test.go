package worker

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/amqp"
)

type fakeAppender struct {
	rows []string
	err  error
}

func (f *fakeAppender) AppendRow(_ context.Context, _ int64, title, _ string, _ int64, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, title)
	return "Transactions!A2:E2", nil
}

func TestHandleRecorded(t *testing.T) {
	appender := &fakeAppender{}
	w := NewExportWorker(appender)

	msg := &amqp.TransactionRecordedMessage{ID: 1, Title: "Salary", Type: "income", ValueCents: 500000, Category: "Job"}
	if err := w.HandleRecorded(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecorded() error: %v", err)
	}
	if len(appender.rows) != 1 || appender.rows[0] != "Salary" {
		t.Errorf("appended rows = %v, want [Salary]", appender.rows)
	}
}

func TestHandleRecordedPropagatesError(t *testing.T) {
	sheetErr := errors.New("quota exceeded")
	w := NewExportWorker(&fakeAppender{err: sheetErr})

	msg := &amqp.TransactionRecordedMessage{ID: 2, Title: "Rent"}
	err := w.HandleRecorded(context.Background(), msg)
	if !errors.Is(err, sheetErr) {
		t.Errorf("HandleRecorded() error = %v, want wrapped %v", err, sheetErr)
	}
}
