package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Writer validates and persists single transactions, enforcing the balance
// invariant: an outcome may never drive the total negative.
type Writer struct {
	categories   CategoryStore
	transactions TransactionStore
	balance      *Calculator
}

func NewWriter(categories CategoryStore, transactions TransactionStore, balance *Calculator) *Writer {
	return &Writer{
		categories:   categories,
		transactions: transactions,
		balance:      balance,
	}
}

// Create resolves the category (creating it if absent), checks the balance
// invariant for outcomes, and persists the transaction.
//
// A category created here survives a rejected transaction: categories can
// exist without transactions, and the two writes are separate atomic units.
func (w *Writer) Create(ctx context.Context, title string, value Money, typ TransactionType, categoryTitle string) (Transaction, error) {
	title = strings.TrimSpace(title)
	categoryTitle = strings.TrimSpace(categoryTitle)

	if title == "" {
		return Transaction{}, ErrEmptyTitle
	}
	if !typ.Valid() {
		return Transaction{}, ErrInvalidType
	}
	if value.Cents < 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if categoryTitle == "" {
		return Transaction{}, ErrEmptyCategory
	}

	category, err := w.resolveCategory(ctx, categoryTitle)
	if err != nil {
		return Transaction{}, err
	}

	if typ == Outcome {
		balance, err := w.balance.Compute(ctx)
		if err != nil {
			return Transaction{}, fmt.Errorf("compute balance: %w", err)
		}
		if value.Cents > balance.Total.Cents {
			slog.InfoContext(ctx, "Outcome rejected, exceeds balance",
				"title", title,
				"value_cents", value.Cents,
				"total_cents", balance.Total.Cents)
			return Transaction{}, ErrInsufficientBalance
		}
	}

	created, err := w.transactions.CreateMany(ctx, []TransactionSpec{{
		Title:    title,
		Type:     typ,
		Value:    value,
		Category: category,
	}})
	if err != nil {
		return Transaction{}, fmt.Errorf("persist transaction: %w", err)
	}
	return created[0], nil
}

func (w *Writer) resolveCategory(ctx context.Context, title string) (Category, error) {
	existing, err := w.categories.FindByTitles(ctx, []string{title})
	if err != nil {
		return Category{}, fmt.Errorf("find category: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	created, err := w.categories.CreateMany(ctx, []string{title})
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "id", created[0].ID, "title", title)
	return created[0], nil
}
