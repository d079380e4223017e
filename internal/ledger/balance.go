package ledger

import (
	"context"
	"fmt"
)

// Calculator derives the balance from the full transaction store on every
// call. There is no materialized aggregate to keep in sync: the O(n) scan is
// an accepted ceiling for personal-scale ledgers.
type Calculator struct {
	transactions TransactionStore
}

func NewCalculator(transactions TransactionStore) *Calculator {
	return &Calculator{transactions: transactions}
}

// Compute returns {income, outcome, total} for the current store state.
// Pure read, no side effects.
func (c *Calculator) Compute(ctx context.Context) (Balance, error) {
	all, err := c.transactions.FindAll(ctx)
	if err != nil {
		return Balance{}, fmt.Errorf("list transactions: %w", err)
	}

	var b Balance
	for _, t := range all {
		switch t.Type {
		case Income:
			b.Income.Cents += t.Value.Cents
		case Outcome:
			b.Outcome.Cents += t.Value.Cents
		}
	}
	b.Total.Cents = b.Income.Cents - b.Outcome.Cents
	return b, nil
}
