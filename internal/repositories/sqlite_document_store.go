package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/bizscope/pkg/database"
)

// SQLiteDocumentStore keeps documents in the documents table
type SQLiteDocumentStore struct {
	db *sql.DB
}

func NewSQLiteDocumentStore(db *sql.DB) *SQLiteDocumentStore {
	return &SQLiteDocumentStore{
		db: db,
	}
}

// OpenSQLiteDocumentStore opens the database at path and wraps it in a store
func OpenSQLiteDocumentStore(path string) (*SQLiteDocumentStore, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteDocumentStore(db), nil
}

// Put creates or replaces the document at key
func (s *SQLiteDocumentStore) Put(ctx context.Context, key string, doc []byte) error {
	query := `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, string(doc)); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// Get retrieves the document at key
func (s *SQLiteDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT body FROM documents WHERE key = $1`

	var body string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return []byte(body), nil
}

// ListKeys returns every stored key
func (s *SQLiteDocumentStore) ListKeys(ctx context.Context) ([]string, error) {
	query := `SELECT key FROM documents ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the underlying database
func (s *SQLiteDocumentStore) Close() error {
	return s.db.Close()
}
