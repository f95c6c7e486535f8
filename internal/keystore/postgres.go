package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresBackend implements Backend against the credentials table of a
// PostgreSQL database.
type PostgresBackend struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresBackend creates a PostgresBackend using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the credentials schema applied.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{DB: db}
}

// Get retrieves the value stored under key.
func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.DB.QueryRowContext(ctx, `
		SELECT value FROM credentials WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set upserts value under key.
func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO credentials (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, nonNil(value))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetIfAbsent inserts value only when key is not present. The primary key
// constraint makes the check and the write one statement.
func (p *PostgresBackend) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := p.DB.ExecContext(ctx, `
		INSERT INTO credentials (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, nonNil(value))
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", key, err)
	}
	return n == 1, nil
}

// Delete removes key.
func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := p.DB.ExecContext(ctx, `DELETE FROM credentials WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// DeleteKeys removes every listed key in one statement.
func (p *PostgresBackend) DeleteKeys(ctx context.Context, keys []string) (int, error) {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM credentials WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return 0, fmt.Errorf("delete keys: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete keys: %w", err)
	}
	return int(n), nil
}

// Keys lists every stored key.
func (p *PostgresBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT key FROM credentials ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return keys, nil
}

// nonNil keeps an empty value from being sent as NULL.
func nonNil(v []byte) []byte {
	if v == nil {
		return []byte{}
	}
	return v
}
