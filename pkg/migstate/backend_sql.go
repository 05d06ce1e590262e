package migstate

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDialect defines the SQL syntax variant.
type SQLDialect string

const (
	DialectSQLite   SQLDialect = "sqlite"
	DialectPostgres SQLDialect = "postgres"
	DialectMySQL    SQLDialect = "mysql"
)

// SQLBackend stores the document as a single row in a relational table,
// keyed by ledger name. It supports SQLite, Postgres, and MySQL through
// database/sql; the user is responsible for opening the *sql.DB with
// their preferred driver.
type SQLBackend struct {
	db        *sql.DB
	tableName string
	dialect   SQLDialect
	name      string
}

// NewSQLBackend creates a SQL-backed document location for the given
// ledger name. If tableName is empty, "migstate_documents" is used.
func NewSQLBackend(db *sql.DB, tableName string, dialect SQLDialect, name string) *SQLBackend {
	if tableName == "" {
		tableName = "migstate_documents"
	}
	return &SQLBackend{
		db:        db,
		tableName: tableName,
		dialect:   dialect,
		name:      name,
	}
}

// InitSchema creates the necessary table if it doesn't exist.
// This is a helper for "migration-free" usage.
func (b *SQLBackend) InitSchema(ctx context.Context) error {
	blobType := "BLOB"
	nameType := "TEXT"
	if b.dialect == DialectPostgres {
		blobType = "BYTEA"
	} else if b.dialect == DialectMySQL {
		// MySQL needs a sized key column for the primary key
		nameType = "VARCHAR(255)"
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name %s PRIMARY KEY,
			document %s
		);
	`, b.tableName, nameType, blobType)

	_, err := b.db.ExecContext(ctx, query)
	return err
}

func (b *SQLBackend) placeholder(n int) string {
	if b.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (b *SQLBackend) Exists(ctx context.Context) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE name = %s", b.tableName, b.placeholder(1))

	var one int
	err := b.db.QueryRowContext(ctx, query, b.name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &BackendUnavailableError{Backend: "sql", Op: "exists", Location: b.String(), Cause: err}
	}
	return true, nil
}

func (b *SQLBackend) Read(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE name = %s", b.tableName, b.placeholder(1))

	var data []byte
	err := b.db.QueryRowContext(ctx, query, b.name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, b.String())
	}
	if err != nil {
		return nil, &BackendUnavailableError{Backend: "sql", Op: "read", Location: b.String(), Cause: err}
	}
	return data, nil
}

func (b *SQLBackend) Write(ctx context.Context, data []byte) error {
	// Build upsert query based on dialect
	var query string
	if b.dialect == DialectMySQL {
		query = fmt.Sprintf(`
			INSERT INTO %s (name, document)
			VALUES (?, ?)
			ON DUPLICATE KEY UPDATE
				document = VALUES(document)
		`, b.tableName)
	} else {
		// SQLite and Postgres use ON CONFLICT
		query = fmt.Sprintf(`
			INSERT INTO %s (name, document)
			VALUES (%s, %s)
			ON CONFLICT(name) DO UPDATE SET
				document = excluded.document
		`, b.tableName, b.placeholder(1), b.placeholder(2))
	}

	if _, err := b.db.ExecContext(ctx, query, b.name, data); err != nil {
		return &BackendUnavailableError{Backend: "sql", Op: "write", Location: b.String(), Cause: err}
	}
	return nil
}

func (b *SQLBackend) String() string {
	return fmt.Sprintf("sql:%s/%s", b.tableName, b.name)
}
