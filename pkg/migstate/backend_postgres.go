package migstate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores the document as a single row in Postgres using
// github.com/jackc/pgx/v5. It is designed to work with pgxpool.
type PostgresBackend struct {
	pool      *pgxpool.Pool
	tableName string
	name      string
}

// NewPostgresBackend creates a Postgres-backed document location for the
// given ledger name. If tableName is empty, "migstate_documents" is used.
func NewPostgresBackend(pool *pgxpool.Pool, tableName, name string) *PostgresBackend {
	if tableName == "" {
		tableName = "migstate_documents"
	}
	return &PostgresBackend{
		pool:      pool,
		tableName: tableName,
		name:      name,
	}
}

// InitSchema creates the necessary table if it doesn't exist.
func (b *PostgresBackend) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			document BYTEA
		);
	`, b.tableName)

	_, err := b.pool.Exec(ctx, query)
	return err
}

func (b *PostgresBackend) Exists(ctx context.Context) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE name = $1", b.tableName)

	var one int
	err := b.pool.QueryRow(ctx, query, b.name).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &BackendUnavailableError{Backend: "postgres", Op: "exists", Location: b.String(), Cause: err}
	}
	return true, nil
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE name = $1", b.tableName)

	var data []byte
	err := b.pool.QueryRow(ctx, query, b.name).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, b.String())
	}
	if err != nil {
		return nil, &BackendUnavailableError{Backend: "postgres", Op: "read", Location: b.String(), Cause: err}
	}
	return data, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, document)
		VALUES ($1, $2)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document
	`, b.tableName)

	if _, err := b.pool.Exec(ctx, query, b.name, data); err != nil {
		return &BackendUnavailableError{Backend: "postgres", Op: "write", Location: b.String(), Cause: err}
	}
	return nil
}

func (b *PostgresBackend) String() string {
	return fmt.Sprintf("postgres:%s/%s", b.tableName, b.name)
}
