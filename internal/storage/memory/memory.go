// Package memory provides in-memory category and transaction stores with
// the same uniqueness and atomicity semantics as the SQLite backend. Used as
// the default backend for local runs and as the test double for handlers.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/ledger"
)

// Store holds the shared ledger state. The per-entity stores returned by
// Categories and Transactions operate on it under one mutex.
type Store struct {
	mu           sync.Mutex
	categories   []ledger.Category
	transactions []ledger.Transaction
	nextCatID    int64
	nextTxnID    int64
}

func New() *Store {
	return &Store{nextCatID: 1, nextTxnID: 1}
}

func (s *Store) Categories() *CategoryStore {
	return &CategoryStore{store: s}
}

func (s *Store) Transactions() *TransactionStore {
	return &TransactionStore{store: s}
}

type CategoryStore struct {
	store *Store
}

var _ ledger.CategoryStore = (*CategoryStore)(nil)

func (c *CategoryStore) FindByTitles(_ context.Context, titles []string) ([]ledger.Category, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	want := make(map[string]bool, len(titles))
	for _, t := range titles {
		want[t] = true
	}

	var found []ledger.Category
	for _, cat := range c.store.categories {
		if want[cat.Title] {
			found = append(found, cat)
		}
	}
	return found, nil
}

func (c *CategoryStore) CreateMany(_ context.Context, titles []string) ([]ledger.Category, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	// Validate the whole batch before touching state so a collision leaves
	// the store unchanged.
	existing := make(map[string]bool, len(c.store.categories))
	for _, cat := range c.store.categories {
		existing[cat.Title] = true
	}
	for _, title := range titles {
		if existing[title] {
			return nil, fmt.Errorf("category title %q: %w", title, ledger.ErrConstraintViolation)
		}
		existing[title] = true
	}

	created := make([]ledger.Category, 0, len(titles))
	for _, title := range titles {
		cat := ledger.Category{ID: c.store.nextCatID, Title: title}
		c.store.nextCatID++
		c.store.categories = append(c.store.categories, cat)
		created = append(created, cat)
	}
	return created, nil
}

type TransactionStore struct {
	store *Store
}

var _ ledger.TransactionStore = (*TransactionStore)(nil)

func (t *TransactionStore) FindAll(_ context.Context) ([]ledger.Transaction, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	all := make([]ledger.Transaction, len(t.store.transactions))
	copy(all, t.store.transactions)
	return all, nil
}

func (t *TransactionStore) CreateMany(_ context.Context, specs []ledger.TransactionSpec) ([]ledger.Transaction, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	// All-or-nothing: validate every spec before appending any.
	known := make(map[int64]bool, len(t.store.categories))
	for _, cat := range t.store.categories {
		known[cat.ID] = true
	}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if !known[spec.Category.ID] {
			return nil, fmt.Errorf("category %d: %w", spec.Category.ID, ledger.ErrConstraintViolation)
		}
	}

	created := make([]ledger.Transaction, 0, len(specs))
	for _, spec := range specs {
		txn := ledger.Transaction{
			ID:       t.store.nextTxnID,
			Title:    spec.Title,
			Type:     spec.Type,
			Value:    spec.Value,
			Category: spec.Category,
		}
		t.store.nextTxnID++
		t.store.transactions = append(t.store.transactions, txn)
		created = append(created, txn)
	}
	return created, nil
}

func (t *TransactionStore) DeleteByID(_ context.Context, id int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for i, txn := range t.store.transactions {
		if txn.ID == id {
			t.store.transactions = append(t.store.transactions[:i], t.store.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
}
