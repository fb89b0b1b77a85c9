package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBlob stores the state document in a single-row-per-key SQLite
// table. WAL mode keeps reads cheap while the governor's serialized writer
// updates the document.
type SQLiteBlob struct {
	db *sql.DB

	readStmt  *sql.Stmt
	writeStmt *sql.Stmt
}

// NewSQLiteBlob opens (or creates) the SQLite database at dbPath.
func NewSQLiteBlob(dbPath string) (*SQLiteBlob, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS state_documents (
			key        TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	readStmt, err := db.Prepare(`SELECT data FROM state_documents WHERE key = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare read statement: %w", err)
	}
	writeStmt, err := db.Prepare(`
		INSERT INTO state_documents (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		readStmt.Close()
		db.Close()
		return nil, fmt.Errorf("failed to prepare write statement: %w", err)
	}

	return &SQLiteBlob{db: db, readStmt: readStmt, writeStmt: writeStmt}, nil
}

// Read returns the document stored under key, or ErrNotFound.
func (b *SQLiteBlob) Read(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.readStmt.QueryRowContext(ctx, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state row %q: %w", key, err)
	}
	return data, nil
}

// Write replaces the document stored under key.
func (b *SQLiteBlob) Write(ctx context.Context, key string, data []byte) error {
	if _, err := b.writeStmt.ExecContext(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write state row %q: %w", key, err)
	}
	return nil
}

// Close releases the prepared statements and the database handle.
func (b *SQLiteBlob) Close() error {
	b.readStmt.Close()
	b.writeStmt.Close()
	return b.db.Close()
}
