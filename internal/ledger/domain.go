package ledger

import (
	"context"
	"errors"
	"strings"
)

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

type (
	// TransactionType carries the sign of a transaction. Values are always
	// non-negative; whether they add to or subtract from the balance is
	// decided here.
	TransactionType string

	Money struct {
		Cents int64
	}

	// Category classifies transactions. Titles are unique, case-sensitive
	// and stored trimmed. Categories are immutable once created.
	Category struct {
		ID    int64
		Title string
	}

	// Transaction references exactly one Category. The reference is
	// non-owning: the category outlives any transaction pointing at it.
	Transaction struct {
		ID       int64
		Title    string
		Type     TransactionType
		Value    Money
		Category Category
	}

	// TransactionSpec is a transaction that has not been persisted yet.
	TransactionSpec struct {
		Title    string
		Type     TransactionType
		Value    Money
		Category Category
	}

	// Balance is derived from the full transaction set, never stored.
	Balance struct {
		Income  Money
		Outcome Money
		Total   Money
	}
)

var (
	ErrEmptyTitle          = errors.New("empty title")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("transaction not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUnresolvedCategory  = errors.New("unresolved category")
)

// CategoryStore is the durable set of categories, keyed by unique title.
type CategoryStore interface {
	// FindByTitles returns the existing categories matching any of the
	// given titles. Order is unspecified.
	FindByTitles(ctx context.Context, titles []string) ([]Category, error)
	// CreateMany persists one category per title as a single atomic unit.
	// Titles must already be deduplicated and not pre-existing; a
	// collision surfaces as ErrConstraintViolation.
	CreateMany(ctx context.Context, titles []string) ([]Category, error)
}

// TransactionStore is the durable set of transactions.
type TransactionStore interface {
	// FindAll returns every transaction in insertion order.
	FindAll(ctx context.Context) ([]Transaction, error)
	// CreateMany persists all specs as a single atomic unit: either every
	// spec is durably stored or none is.
	CreateMany(ctx context.Context, specs []TransactionSpec) ([]Transaction, error)
	// DeleteByID removes one transaction, returning ErrNotFound if absent.
	DeleteByID(ctx context.Context, id int64) error
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Outcome
}

func (s TransactionSpec) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if !s.Type.Valid() {
		return ErrInvalidType
	}
	if s.Value.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
