package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/queueoverflow/queueoverflow/internal/apperror"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable Store. Every collection lives as one row in a
// single table, so a Put is one atomic row replace.
type SQLiteStore struct {
	conn *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and prepares the schema.
// Use ":memory:" in tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kvstore: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: pinging database: %w", err)
	}

	// WAL keeps readers unblocked while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			name       TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: creating collections table: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, collection string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE name = ?`, collection,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.StorageUnavailable(fmt.Errorf("reading %s: %w", collection, err))
	}
	return data, nil
}

func (s *SQLiteStore) Put(ctx context.Context, collection string, data []byte) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO collections (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, data,
	)
	if err != nil {
		return apperror.StorageUnavailable(fmt.Errorf("writing %s: %w", collection, err))
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM collections WHERE name = ?`, collection,
	)
	if err != nil {
		return apperror.StorageUnavailable(fmt.Errorf("deleting %s: %w", collection, err))
	}
	return nil
}
