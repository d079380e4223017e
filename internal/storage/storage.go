// Package storage provides the SQLite-backed category and transaction
// stores. The schema is managed by embedded golang-migrate migrations.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB owns the SQLite connection and hands out the per-entity stores.
// Stores are resolved once at startup, never looked up per call.
type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Foreign keys are enabled through the DSN so every pooled connection
	// enforces referential integrity between transactions and categories.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Categories returns the category store backed by this connection.
func (d *DB) Categories() *CategoryStore {
	return &CategoryStore{db: d.db}
}

// Transactions returns the transaction store backed by this connection.
func (d *DB) Transactions() *TransactionStore {
	return &TransactionStore{db: d.db}
}
