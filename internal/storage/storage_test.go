package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ledger/internal/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return db
}

func TestCategoryStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	categories := db.Categories()

	created, err := categories.CreateMany(ctx, []string{"Job", "Housing", "Food"})
	if err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("CreateMany() returned %d categories, want 3", len(created))
	}
	for i, c := range created {
		if c.ID == 0 {
			t.Errorf("category %d has zero id", i)
		}
	}

	found, err := categories.FindByTitles(ctx, []string{"Job", "Food", "Missing"})
	if err != nil {
		t.Fatalf("FindByTitles() error: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("FindByTitles() returned %d categories, want 2", len(found))
	}

	// Titles are case-sensitive
	found, err = categories.FindByTitles(ctx, []string{"job"})
	if err != nil {
		t.Fatalf("FindByTitles() error: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("FindByTitles(job) returned %d categories, want 0", len(found))
	}

	// Empty input short-circuits
	found, err = categories.FindByTitles(ctx, nil)
	if err != nil {
		t.Fatalf("FindByTitles(nil) error: %v", err)
	}
	if found != nil {
		t.Errorf("FindByTitles(nil) = %v, want nil", found)
	}
}

func TestCategoryStoreUniqueTitle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	categories := db.Categories()

	if _, err := categories.CreateMany(ctx, []string{"Food"}); err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}

	// The duplicate fails and the whole batch rolls back
	_, err := categories.CreateMany(ctx, []string{"Transport", "Food"})
	if !errors.Is(err, ledger.ErrConstraintViolation) {
		t.Fatalf("CreateMany() error = %v, want ErrConstraintViolation", err)
	}

	found, err := categories.FindByTitles(ctx, []string{"Transport"})
	if err != nil {
		t.Fatalf("FindByTitles() error: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Transport persisted despite failed batch; CreateMany must be atomic")
	}
}

func TestTransactionStoreCreateAndFindAll(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	cats, err := db.Categories().CreateMany(ctx, []string{"Job", "Housing"})
	if err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}

	transactions := db.Transactions()
	created, err := transactions.CreateMany(ctx, []ledger.TransactionSpec{
		{Title: "Salary", Type: ledger.Income, Value: ledger.Money{Cents: 500000}, Category: cats[0]},
		{Title: "Rent", Type: ledger.Outcome, Value: ledger.Money{Cents: 120000}, Category: cats[1]},
	})
	if err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("CreateMany() returned %d transactions, want 2", len(created))
	}

	all, err := transactions.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("FindAll() returned %d transactions, want 2", len(all))
	}
	// Insertion order and joined category data
	if all[0].Title != "Salary" || all[1].Title != "Rent" {
		t.Errorf("order = %q, %q, want Salary, Rent", all[0].Title, all[1].Title)
	}
	if all[0].Category.Title != "Job" {
		t.Errorf("joined category = %q, want Job", all[0].Category.Title)
	}
	if all[1].Type != ledger.Outcome || all[1].Value.Cents != 120000 {
		t.Errorf("row = %+v, want outcome 120000 cents", all[1])
	}
}

func TestTransactionStoreCreateManyAtomic(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	cats, err := db.Categories().CreateMany(ctx, []string{"Job"})
	if err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}

	transactions := db.Transactions()
	// Second spec references a category that does not exist; the foreign
	// key rejects it and the first row must roll back with it.
	_, err = transactions.CreateMany(ctx, []ledger.TransactionSpec{
		{Title: "Salary", Type: ledger.Income, Value: ledger.Money{Cents: 500000}, Category: cats[0]},
		{Title: "Ghost", Type: ledger.Income, Value: ledger.Money{Cents: 100}, Category: ledger.Category{ID: 9999, Title: "Nope"}},
	})
	if err == nil {
		t.Fatal("CreateMany() should fail on a dangling category reference")
	}

	all, err := transactions.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("store has %d transactions after failed batch, want 0", len(all))
	}
}

func TestTransactionStoreDeleteByID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	cats, err := db.Categories().CreateMany(ctx, []string{"Job"})
	if err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}
	transactions := db.Transactions()
	created, err := transactions.CreateMany(ctx, []ledger.TransactionSpec{
		{Title: "Salary", Type: ledger.Income, Value: ledger.Money{Cents: 100}, Category: cats[0]},
	})
	if err != nil {
		t.Fatalf("CreateMany() error: %v", err)
	}

	if err := transactions.DeleteByID(ctx, created[0].ID); err != nil {
		t.Fatalf("DeleteByID() error: %v", err)
	}

	err = transactions.DeleteByID(ctx, created[0].ID)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("DeleteByID() second call error = %v, want ErrNotFound", err)
	}

	all, err := transactions.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("store has %d transactions after delete, want 0", len(all))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// Reopening runs migrations again; ErrNoChange must not surface
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}
