// Package services orchestrates ledger operations across the stores, the
// import reconciler, and the AMQP event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/importer"
	"ledger/internal/ledger"
)

// EventPublisher announces recorded transactions to downstream consumers.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, t ledger.Transaction) error
}

// LedgerService is the caller-facing surface of the ledger core. Event
// publishing is best-effort: the stores are the source of truth and a failed
// publish never fails the originating request.
type LedgerService struct {
	transactions ledger.TransactionStore
	writer       *ledger.Writer
	balance      *ledger.Calculator
	reconciler   *importer.Reconciler
	publisher    EventPublisher
}

func NewLedgerService(
	transactions ledger.TransactionStore,
	writer *ledger.Writer,
	balance *ledger.Calculator,
	reconciler *importer.Reconciler,
	publisher EventPublisher,
) *LedgerService {
	return &LedgerService{
		transactions: transactions,
		writer:       writer,
		balance:      balance,
		reconciler:   reconciler,
		publisher:    publisher,
	}
}

// List returns all transactions with the balance derived from them.
func (s *LedgerService) List(ctx context.Context) ([]ledger.Transaction, ledger.Balance, error) {
	all, err := s.transactions.FindAll(ctx)
	if err != nil {
		return nil, ledger.Balance{}, fmt.Errorf("list transactions: %w", err)
	}
	balance, err := s.balance.Compute(ctx)
	if err != nil {
		return nil, ledger.Balance{}, fmt.Errorf("compute balance: %w", err)
	}
	return all, balance, nil
}

// Create records one transaction and publishes its event.
func (s *LedgerService) Create(ctx context.Context, title string, value ledger.Money, typ ledger.TransactionType, categoryTitle string) (ledger.Transaction, error) {
	created, err := s.writer.Create(ctx, title, value, typ, categoryTitle)
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.publish(ctx, created)
	return created, nil
}

// Delete removes one transaction by id.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	return s.transactions.DeleteByID(ctx, id)
}

// ImportFile merges the batch stored at path into the ledger and publishes
// one event per created transaction. The file is removed by the reconciler
// whether the import succeeds or not.
func (s *LedgerService) ImportFile(ctx context.Context, path string) ([]ledger.Transaction, error) {
	created, err := s.reconciler.ImportFile(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, t := range created {
		s.publish(ctx, t)
	}
	return created, nil
}

func (s *LedgerService) publish(ctx context.Context, t ledger.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", t.ID, "error", err)
	}
}
