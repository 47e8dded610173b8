package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "modernc.org/sqlite"
)

const createTableStmt = `
CREATE TABLE IF NOT EXISTS cache_entries (
	store     TEXT NOT NULL,
	key       TEXT NOT NULL,
	status    INTEGER NOT NULL,
	header    TEXT NOT NULL,
	body      BLOB NOT NULL,
	stored_at INTEGER NOT NULL,
	PRIMARY KEY (store, key)
)`

// SQLiteProvider persists cache stores in a single SQLite database so the
// gateway's cache survives restarts. Each store is a partition of one
// table keyed by (store, key).
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLiteProvider opens or creates the cache database at path.
func NewSQLiteProvider(path string) (*SQLiteProvider, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// The driver serializes writes; a single connection avoids lock
	// contention between the request path and the background writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &SQLiteProvider{db: db}, nil
}

// Get returns the entry stored under key.
func (p *SQLiteProvider) Get(ctx context.Context, store, key string) (*Entry, bool, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT status, header, body, stored_at FROM cache_entries WHERE store = ? AND key = ?`,
		store, key)

	var (
		status     int
		headerJSON string
		body       []byte
		storedAt   int64
	)
	if err := row.Scan(&status, &headerJSON, &body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var header http.Header
	if err := json.Unmarshal([]byte(headerJSON), &header); err != nil {
		return nil, false, fmt.Errorf("decoding cached headers: %w", err)
	}

	return &Entry{
		Status:   status,
		Header:   header,
		Body:     body,
		StoredAt: time.Unix(storedAt, 0),
	}, true, nil
}

// Put stores an entry, replacing any previous one under the same key.
func (p *SQLiteProvider) Put(ctx context.Context, store, key string, entry *Entry) error {
	headerJSON, err := json.Marshal(entry.Header)
	if err != nil {
		return fmt.Errorf("encoding cached headers: %w", err)
	}

	storedAt := entry.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO cache_entries (store, key, status, header, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (store, key) DO UPDATE SET
		   status = excluded.status,
		   header = excluded.header,
		   body = excluded.body,
		   stored_at = excluded.stored_at`,
		store, key, entry.Status, string(headerJSON), entry.Body, storedAt.Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Stores lists the distinct store names present in the database.
func (p *SQLiteProvider) Stores(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT DISTINCT store FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("listing cache stores: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning store name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteStore removes a store and all its entries.
func (p *SQLiteProvider) DeleteStore(ctx context.Context, store string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE store = ?`, store); err != nil {
		return fmt.Errorf("deleting cache store %s: %w", store, err)
	}
	return nil
}

// Close closes the underlying database.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}
