package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ledger/internal/importer"
	"ledger/internal/ledger"
	"ledger/internal/storage/memory"
)

type recordingPublisher struct {
	published []int64
	err       error
}

func (p *recordingPublisher) PublishTransactionRecorded(_ context.Context, t ledger.Transaction) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, t.ID)
	return nil
}

func newService(publisher EventPublisher) (*LedgerService, *memory.Store) {
	store := memory.New()
	categories := store.Categories()
	transactions := store.Transactions()

	calc := ledger.NewCalculator(transactions)
	writer := ledger.NewWriter(categories, transactions, calc)
	reconciler := importer.New(categories, transactions)
	return NewLedgerService(transactions, writer, calc, reconciler, publisher), store
}

func TestCreatePublishesEvent(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newService(publisher)

	created, err := svc.Create(ctx, "Salary", ledger.Money{Cents: 500000}, ledger.Income, "Job")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0] != created.ID {
		t.Errorf("published ids = %v, want [%d]", publisher.published, created.ID)
	}
}

func TestCreateRejectionPublishesNothing(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newService(publisher)

	_, err := svc.Create(ctx, "TV", ledger.Money{Cents: 100}, ledger.Outcome, "Shopping")
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("Create() error = %v, want ErrInsufficientBalance", err)
	}
	if len(publisher.published) != 0 {
		t.Errorf("published ids = %v, want none", publisher.published)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc, store := newService(publisher)

	created, err := svc.Create(ctx, "Salary", ledger.Money{Cents: 100}, ledger.Income, "Job")
	if err != nil {
		t.Fatalf("Create() error = %v, publish failures must not fail the request", err)
	}
	if created.ID == 0 {
		t.Error("transaction should be persisted despite publish failure")
	}

	all, err := store.Transactions().FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("store has %d transactions, want 1", len(all))
	}
}

func TestNilPublisher(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)

	if _, err := svc.Create(ctx, "Salary", ledger.Money{Cents: 100}, ledger.Income, "Job"); err != nil {
		t.Fatalf("Create() error with nil publisher: %v", err)
	}
}

func TestListReturnsTransactionsAndBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)

	if _, err := svc.Create(ctx, "Salary", ledger.Money{Cents: 500000}, ledger.Income, "Job"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Create(ctx, "Rent", ledger.Money{Cents: 120000}, ledger.Outcome, "Housing"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	all, balance, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d transactions, want 2", len(all))
	}
	if balance.Total.Cents != 380000 {
		t.Errorf("total = %d, want 380000", balance.Total.Cents)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)

	created, err := svc.Create(ctx, "Salary", ledger.Money{Cents: 100}, ledger.Income, "Job")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	err = svc.Delete(ctx, created.ID)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestImportFilePublishesPerTransaction(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newService(publisher)

	path := filepath.Join(t.TempDir(), "batch.csv")
	batch := "title,type,value,category\n" +
		"Salary,income,5000,Job\n" +
		"Rent,outcome,1200,Housing\n"
	if err := os.WriteFile(path, []byte(batch), 0644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}

	created, err := svc.ImportFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportFile() error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("ImportFile() returned %d transactions, want 2", len(created))
	}
	if len(publisher.published) != 2 {
		t.Errorf("published %d events, want 2", len(publisher.published))
	}
}
