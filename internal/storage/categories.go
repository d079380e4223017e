package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"ledger/internal/ledger"
)

// CategoryStore persists categories with a unique title constraint.
type CategoryStore struct {
	db *sql.DB
}

var _ ledger.CategoryStore = (*CategoryStore)(nil)

// FindByTitles returns the existing categories whose title matches any of
// the given titles.
func (s *CategoryStore) FindByTitles(ctx context.Context, titles []string) ([]ledger.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(titles))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(titles))
	for i, t := range titles {
		args[i] = t
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title FROM categories WHERE title IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("query categories by title: %w", err)
	}
	defer rows.Close()

	var categories []ledger.Category
	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// CreateMany inserts one category per title inside a single transaction.
// Either every title is persisted or none is. A title collision maps to
// ledger.ErrConstraintViolation; with deduplicated input it indicates a
// concurrent import racing on the same title.
func (s *CategoryStore) CreateMany(ctx context.Context, titles []string) ([]ledger.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO categories (title) VALUES (?)")
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	categories := make([]ledger.Category, 0, len(titles))
	for _, title := range titles {
		res, err := stmt.ExecContext(ctx, title)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("category title %q: %w", title, ledger.ErrConstraintViolation)
			}
			return nil, fmt.Errorf("insert category %q: %w", title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("category insert id: %w", err)
		}
		categories = append(categories, ledger.Category{ID: id, Title: title})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit categories: %w", err)
	}

	slog.DebugContext(ctx, "Categories persisted", "count", len(categories))
	return categories, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
