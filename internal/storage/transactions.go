package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"ledger/internal/ledger"
)

// TransactionStore persists transactions referencing categories by id.
type TransactionStore struct {
	db *sql.DB
}

var _ ledger.TransactionStore = (*TransactionStore)(nil)

// FindAll returns every transaction joined with its category, in insertion
// order.
func (s *TransactionStore) FindAll(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.type, t.value_cents, c.id, c.title
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.Title, &typ, &t.Value.Cents, &t.Category.ID, &t.Category.Title); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = ledger.TransactionType(typ)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// CreateMany inserts every spec inside a single transaction: either the
// whole batch becomes visible or none of it does.
func (s *TransactionStore) CreateMany(ctx context.Context, specs []ledger.TransactionSpec) ([]ledger.Transaction, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (title, type, value_cents, category_id)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	created := make([]ledger.Transaction, 0, len(specs))
	for _, spec := range specs {
		res, err := stmt.ExecContext(ctx, spec.Title, string(spec.Type), spec.Value.Cents, spec.Category.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("transaction %q: %w", spec.Title, ledger.ErrConstraintViolation)
			}
			return nil, fmt.Errorf("insert transaction %q: %w", spec.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("transaction insert id: %w", err)
		}
		created = append(created, ledger.Transaction{
			ID:       id,
			Title:    spec.Title,
			Type:     spec.Type,
			Value:    spec.Value,
			Category: spec.Category,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transactions: %w", err)
	}

	slog.DebugContext(ctx, "Transactions persisted", "count", len(created))
	return created, nil
}

// DeleteByID removes one transaction, returning ledger.ErrNotFound when the
// id does not exist.
func (s *TransactionStore) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}
