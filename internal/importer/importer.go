// Package importer ingests externally authored transaction batches (bank
// export style CSV) and merges them into the ledger without duplicating
// categories or breaking referential integrity.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"ledger/internal/ledger"
)

// Reconciler parses a batch source, reconciles category references against
// the store, and merges the resulting transactions as one atomic unit.
//
// Category creation and transaction creation are two separate atomic units:
// a batch that fails at the merge step may still have created its missing
// categories, consistent with the single-create path where a category
// survives a rejected transaction.
type Reconciler struct {
	categories   ledger.CategoryStore
	transactions ledger.TransactionStore
}

func New(categories ledger.CategoryStore, transactions ledger.TransactionStore) *Reconciler {
	return &Reconciler{
		categories:   categories,
		transactions: transactions,
	}
}

// admittedRow is a structurally complete batch row. Only these and the set
// of referenced category titles are retained while the source streams.
type admittedRow struct {
	title    string
	typ      ledger.TransactionType
	value    ledger.Money
	category string
}

// ImportFile imports the batch stored at path and removes the file once the
// attempt finishes, whether it succeeded or not. The file is the caller's
// temporary upload; nothing may leak regardless of outcome.
func (r *Reconciler) ImportFile(ctx context.Context, path string) ([]ledger.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.WarnContext(ctx, "Failed to remove batch file", "path", path, "error", rmErr)
		}
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.WarnContext(ctx, "Failed to close batch file", "path", path, "error", closeErr)
		}
		if rmErr := os.Remove(path); rmErr != nil {
			slog.WarnContext(ctx, "Failed to remove batch file", "path", path, "error", rmErr)
		}
	}()

	return r.Import(ctx, f)
}

// Import runs the reconciliation pipeline over a row-oriented comma-delimited
// stream. The first row is a header and is always skipped. Each data row
// carries four ordered fields: title, type, value, category.
//
// Admission is lenient: a row that cannot be split into four fields, or that
// is missing title, type, or value after trimming, or whose type or value do
// not parse, is silently dropped. The batch either fully succeeds or fully
// fails; there is no partial-batch state.
//
// Returned transactions are in the same order as their admitted rows.
func (r *Reconciler) Import(ctx context.Context, source io.Reader) ([]ledger.Transaction, error) {
	rows, titles, err := parseRows(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		slog.InfoContext(ctx, "Batch contained no admissible rows")
		return nil, nil
	}

	byTitle, err := r.reconcileCategories(ctx, titles)
	if err != nil {
		return nil, err
	}

	specs := make([]ledger.TransactionSpec, 0, len(rows))
	for _, row := range rows {
		category, ok := byTitle[row.category]
		if !ok {
			// Reconciliation just resolved every referenced title, so a
			// miss here is an internal bug, not a data-quality issue.
			// Abort the whole batch instead of dropping the row.
			return nil, fmt.Errorf("category %q after reconciliation: %w", row.category, ledger.ErrUnresolvedCategory)
		}
		specs = append(specs, ledger.TransactionSpec{
			Title:    row.title,
			Type:     row.typ,
			Value:    row.value,
			Category: category,
		})
	}

	created, err := r.transactions.CreateMany(ctx, specs)
	if err != nil {
		return nil, fmt.Errorf("merge batch: %w", err)
	}

	slog.InfoContext(ctx, "Batch imported", "transactions", len(created), "categories", len(byTitle))
	return created, nil
}

// parseRows consumes the source incrementally, row by row, keeping only the
// admitted rows and the referenced category titles in first-appearance order.
func parseRows(ctx context.Context, source io.Reader) ([]admittedRow, []string, error) {
	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows    []admittedRow
		titles  []string
		seen    = map[string]bool{}
		header  = true
		dropped int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// Malformed row, dropped under the same lenient policy as
			// incomplete ones.
			dropped++
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read batch source: %w", err)
		}
		if header {
			header = false
			continue
		}

		row, ok := admit(record)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, row)
		if !seen[row.category] {
			seen[row.category] = true
			titles = append(titles, row.category)
		}
	}

	if dropped > 0 {
		slog.DebugContext(ctx, "Dropped inadmissible batch rows", "count", dropped)
	}
	return rows, titles, nil
}

// admit applies the row admission policy: exactly four fields, trimmed, with
// title, type, and value present and well-formed. Category may be empty; the
// empty title then names the unclassified bucket, subject to the same
// uniqueness rule as any other.
func admit(record []string) (admittedRow, bool) {
	if len(record) != 4 {
		return admittedRow{}, false
	}

	title := strings.TrimSpace(record[0])
	typ := ledger.TransactionType(strings.TrimSpace(record[1]))
	valueStr := strings.TrimSpace(record[2])
	category := strings.TrimSpace(record[3])

	if title == "" || typ == "" || valueStr == "" {
		return admittedRow{}, false
	}
	if !typ.Valid() {
		return admittedRow{}, false
	}
	value, err := ledger.ParseAmount(valueStr)
	if err != nil {
		return admittedRow{}, false
	}

	return admittedRow{title: title, typ: typ, value: value, category: category}, true
}

// reconcileCategories maps every referenced title onto an existing or newly
// created category, creating at most one category per distinct missing title.
// Titles already in the store are never re-created.
func (r *Reconciler) reconcileCategories(ctx context.Context, titles []string) (map[string]ledger.Category, error) {
	existing, err := r.categories.FindByTitles(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}

	byTitle := make(map[string]ledger.Category, len(titles))
	for _, c := range existing {
		byTitle[c.Title] = c
	}

	var missing []string
	for _, title := range titles {
		if _, ok := byTitle[title]; !ok {
			missing = append(missing, title)
		}
	}
	if len(missing) == 0 {
		return byTitle, nil
	}

	created, err := r.categories.CreateMany(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("create categories: %w", err)
	}
	for _, c := range created {
		byTitle[c.Title] = c
	}

	slog.InfoContext(ctx, "Categories created for batch", "count", len(created))
	return byTitle, nil
}
